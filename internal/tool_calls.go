package internal

import (
	"fmt"
	"sync"
)

// ToolCallRecord pairs a tool call with its result once one arrives
type ToolCallRecord struct {
	Call   ToolCall
	Result *ToolResult
}

// ToolCallRegistry provides thread-safe access to the tool calls of a stream
type ToolCallRegistry struct {
	mu    sync.RWMutex
	order []string
	calls map[string]*ToolCallRecord
	anon  int
}

// NewToolCallRegistry creates a new ToolCallRegistry
func NewToolCallRegistry() *ToolCallRegistry {
	return &ToolCallRegistry{
		calls: make(map[string]*ToolCallRecord),
	}
}

// Record stores a tool call. Calls without an id are kept for display but can
// never be matched by a result.
func (r *ToolCallRegistry) Record(call ToolCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := call.ID
	if key == "" {
		r.anon++
		key = fmt.Sprintf("\x00anonymous-%d", r.anon)
	}
	if _, exists := r.calls[key]; !exists {
		r.order = append(r.order, key)
	}
	r.calls[key] = &ToolCallRecord{Call: call}
}

// Resolve attaches result to its call and reports whether the call was known
func (r *ToolCallRegistry) Resolve(result ToolResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.calls[result.ID]
	if !ok || result.ID == "" {
		return false
	}
	rec.Result = &result
	return true
}

// Get retrieves a tool call by id
func (r *ToolCallRegistry) Get(id string) (ToolCallRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.calls[id]
	if !ok {
		return ToolCallRecord{}, false
	}
	return *rec, true
}

// Len returns the number of recorded calls
func (r *ToolCallRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns the recorded calls in arrival order
func (r *ToolCallRegistry) All() []ToolCallRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]ToolCallRecord, 0, len(r.order))
	for _, key := range r.order {
		records = append(records, *r.calls[key])
	}
	return records
}
