package stream

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Multiplexer merges token-level generation signals and step-completion
// signals into one ordered event sequence on a Sink.
//
// Tool-call announcements are de-duplicated by call id, because the same call
// can surface both in the token stream and in the completed step. After the
// client disconnects, events are dropped but the callers keep running; only
// the outbound stream is torn down early.
type Multiplexer struct {
	sink         Sink
	disconnected func() bool
	logger       *slog.Logger

	mu       sync.Mutex
	seen     map[string]struct{}
	doneSent bool
}

// NewMultiplexer creates a multiplexer over sink. disconnected is polled
// before each emit; nil means the client never disconnects.
func NewMultiplexer(sink Sink, disconnected func() bool, logger *slog.Logger) *Multiplexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multiplexer{
		sink:         sink,
		disconnected: disconnected,
		logger:       logger,
		seen:         make(map[string]struct{}),
	}
}

// Token forwards a non-empty text fragment.
func (m *Multiplexer) Token(content string) {
	if content == "" {
		return
	}
	m.emit(&TokenEvent{BaseEvent{EventToken}, content})
}

// ToolCall announces a tool-call request once per call id.
func (m *Multiplexer) ToolCall(id, name string, args json.RawMessage) {
	m.mu.Lock()
	if _, ok := m.seen[id]; ok {
		m.mu.Unlock()
		return
	}
	m.seen[id] = struct{}{}
	m.mu.Unlock()

	m.emit(&ToolCallEvent{BaseEvent{EventToolCall}, name, args})
}

// ToolResult reports the outcome of one executed tool call.
func (m *Multiplexer) ToolResult(name, result string) {
	m.emit(&ToolResultEvent{BaseEvent{EventToolResult}, name, result})
}

// Confirmation asks the client to approve or cancel a gated tool call.
func (m *Multiplexer) Confirmation(name string, args json.RawMessage, prompt string) {
	m.emit(&ConfirmationEvent{BaseEvent{EventConfirmation}, name, args, prompt})
}

// Interrupted tells the client the run is suspended awaiting a decision.
func (m *Multiplexer) Interrupted(conversationID string) {
	m.emit(&InterruptedEvent{BaseEvent{EventInterrupted}, conversationID})
}

// Error reports an unrecoverable failure. Done must still follow.
func (m *Multiplexer) Error(message string) {
	m.emit(&ErrorEvent{BaseEvent{EventError}, message})
}

// Done terminates the stream. Emitted at most once; later calls are no-ops.
func (m *Multiplexer) Done(conversationID string, ok bool) {
	m.mu.Lock()
	if m.doneSent {
		m.mu.Unlock()
		return
	}
	m.doneSent = true
	m.mu.Unlock()

	m.emit(&DoneEvent{BaseEvent{EventDone}, conversationID, ok})
}

func (m *Multiplexer) emit(event Event) {
	if m.disconnected != nil && m.disconnected() {
		return
	}
	if err := m.sink.Send(event); err != nil {
		m.logger.Debug("dropping event, sink send failed", "type", event.Kind(), "error", err)
	}
}
