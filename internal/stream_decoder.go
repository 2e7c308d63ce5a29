package internal

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Frame tags of the backend streaming protocol
const (
	FrameTagText       = "0"
	FrameTagError      = "3"
	FrameTagToolCall   = "9"
	FrameTagToolResult = "a"
)

// EventKind identifies the payload carried by an Event
type EventKind int

const (
	EventTextDelta EventKind = iota + 1
	EventToolCall
	EventToolResult
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventTextDelta:
		return "text"
	case EventToolCall:
		return "tool_call"
	case EventToolResult:
		return "tool_result"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// ToolCall is a tool invocation announced by the backend
type ToolCall struct {
	ID   string          `json:"toolCallId"`
	Name string          `json:"toolName"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Label returns the text shown for a tool call: the search query when there
// is one, else the tool name, else "web"
func (c ToolCall) Label() string {
	if q := gjson.GetBytes(c.Args, "query"); q.Type == gjson.String && q.String() != "" {
		return q.String()
	}
	if c.Name != "" {
		return c.Name
	}
	return "web"
}

// ToolResult is the output of a previously announced tool call
type ToolResult struct {
	ID     string          `json:"toolCallId"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Event is one decoded frame
type Event struct {
	Kind       EventKind
	Text       string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

// DecoderState carries the unterminated tail of the previous chunk
type DecoderState struct {
	Pending []byte
}

// Decode splits chunk, prefixed by the carried partial line, into complete
// frames. The trailing incomplete line is returned as the new carry.
// Malformed frames and unknown tags are dropped.
func Decode(chunk []byte, carry DecoderState) ([]Event, DecoderState) {
	buf := make([]byte, 0, len(carry.Pending)+len(chunk))
	buf = append(buf, carry.Pending...)
	buf = append(buf, chunk...)

	var events []Event
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(buf[:i], []byte{'\r'})
		buf = buf[i+1:]
		if ev, ok := decodeFrame(line); ok {
			events = append(events, ev)
		}
	}

	var next DecoderState
	if len(buf) > 0 {
		next.Pending = buf
	}
	return events, next
}

func decodeFrame(line []byte) (Event, bool) {
	sep := bytes.IndexByte(line, ':')
	if sep <= 0 {
		return Event{}, false
	}
	tag := string(line[:sep])
	payload := line[sep+1:]
	if !gjson.ValidBytes(payload) {
		LogDebug("Dropping malformed %q frame", tag)
		return Event{}, false
	}
	body := gjson.ParseBytes(payload)

	switch tag {
	case FrameTagText:
		if body.Type != gjson.String {
			return Event{}, false
		}
		return Event{Kind: EventTextDelta, Text: body.String()}, true
	case FrameTagError:
		if body.Type != gjson.String {
			return Event{}, false
		}
		return Event{Kind: EventError, Text: body.String()}, true
	case FrameTagToolCall:
		if !body.IsObject() {
			return Event{}, false
		}
		call := &ToolCall{
			ID:   body.Get("toolCallId").String(),
			Name: body.Get("toolName").String(),
		}
		if args := body.Get("args"); args.Exists() {
			call.Args = json.RawMessage(args.Raw)
		}
		return Event{Kind: EventToolCall, ToolCall: call}, true
	case FrameTagToolResult:
		id := body.Get("toolCallId")
		if !body.IsObject() || id.Type != gjson.String || id.String() == "" {
			return Event{}, false
		}
		result := &ToolResult{ID: id.String()}
		if r := body.Get("result"); r.Exists() {
			result.Result = json.RawMessage(r.Raw)
		}
		return Event{Kind: EventToolResult, ToolResult: result}, true
	default:
		return Event{}, false
	}
}

// StreamDecoder applies Decode across a whole stream, keeping the carry, the
// running transcript and the tool calls seen so far
type StreamDecoder struct {
	carry      DecoderState
	transcript strings.Builder
	tools      *ToolCallRegistry
	errors     []string
}

// NewStreamDecoder creates a decoder with an empty transcript
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{tools: NewToolCallRegistry()}
}

// Write decodes chunk and returns the events it completed, in order. Text
// deltas are appended to the transcript before being returned; tool results
// whose call id was never announced are dropped.
func (d *StreamDecoder) Write(chunk []byte) []Event {
	events, carry := Decode(chunk, d.carry)
	d.carry = carry

	applied := events[:0]
	for _, ev := range events {
		switch ev.Kind {
		case EventTextDelta:
			d.transcript.WriteString(ev.Text)
		case EventToolCall:
			d.tools.Record(*ev.ToolCall)
		case EventToolResult:
			if !d.tools.Resolve(*ev.ToolResult) {
				LogDebug("Dropping tool result for unknown call %s", ev.ToolResult.ID)
				continue
			}
		case EventError:
			d.errors = append(d.errors, ev.Text)
		}
		applied = append(applied, ev)
	}
	return applied
}

// Finish ends the stream, discarding any unterminated line, and returns the
// number of bytes discarded
func (d *StreamDecoder) Finish() int {
	n := len(d.carry.Pending)
	d.carry = DecoderState{}
	return n
}

// Text returns the transcript accumulated so far
func (d *StreamDecoder) Text() string {
	return d.transcript.String()
}

// ToolCalls returns the recorded tool calls in arrival order
func (d *StreamDecoder) ToolCalls() []ToolCallRecord {
	return d.tools.All()
}

// Errors returns backend error messages received in error frames
func (d *StreamDecoder) Errors() []string {
	return append([]string(nil), d.errors...)
}
