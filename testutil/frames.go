package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FrameBuilder assembles a newline-delimited tagged frame stream
type FrameBuilder struct {
	buf bytes.Buffer
}

// NewFrameBuilder creates an empty stream
func NewFrameBuilder() *FrameBuilder {
	return &FrameBuilder{}
}

func (b *FrameBuilder) frame(tag string, payload interface{}) *FrameBuilder {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("frame payload: %v", err))
	}
	b.buf.WriteString(tag)
	b.buf.WriteByte(':')
	b.buf.Write(data)
	b.buf.WriteByte('\n')
	return b
}

// Text appends a text-delta frame
func (b *FrameBuilder) Text(s string) *FrameBuilder {
	return b.frame("0", s)
}

// ToolCall appends a tool-call frame
func (b *FrameBuilder) ToolCall(id, name string, args map[string]interface{}) *FrameBuilder {
	return b.frame("9", map[string]interface{}{
		"toolCallId": id,
		"toolName":   name,
		"args":       args,
	})
}

// ToolResult appends a tool-result frame
func (b *FrameBuilder) ToolResult(id string, result interface{}) *FrameBuilder {
	return b.frame("a", map[string]interface{}{
		"toolCallId": id,
		"result":     result,
	})
}

// Error appends an error frame
func (b *FrameBuilder) Error(msg string) *FrameBuilder {
	return b.frame("3", msg)
}

// Raw appends line verbatim followed by a newline
func (b *FrameBuilder) Raw(line string) *FrameBuilder {
	b.buf.WriteString(line)
	b.buf.WriteByte('\n')
	return b
}

// Bytes returns the stream
func (b *FrameBuilder) Bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}

// String returns the stream as a string
func (b *FrameBuilder) String() string {
	return b.buf.String()
}

// Chunks splits the stream into pieces of at most size bytes, ignoring
// frame and UTF-8 boundaries
func (b *FrameBuilder) Chunks(size int) [][]byte {
	return SplitEvery(b.Bytes(), size)
}

// SplitEvery splits data into pieces of at most size bytes
func SplitEvery(data []byte, size int) [][]byte {
	if size <= 0 {
		size = 1
	}
	var out [][]byte
	for len(data) > size {
		out = append(out, data[:size])
		data = data[size:]
	}
	if len(data) > 0 {
		out = append(out, data)
	}
	return out
}
