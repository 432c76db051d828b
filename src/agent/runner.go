package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/villaops/villaops/src/aisdk"
	"github.com/villaops/villaops/src/stream"
)

// DefaultMaxSteps bounds the ask/act loop for a single turn.
const DefaultMaxSteps = 16

// FlushFunc persists messages to the conversation record. The runner calls it
// before every point where the run can suspend or return, so the durable
// transcript never trails the model's view.
type FlushFunc func(ctx context.Context, messages ...*aisdk.Message) error

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Client       aisdk.ModelClient
	Toolbox      *Toolbox
	Gate         *Gate
	MaxSteps     int
	SystemPrompt string
	Logger       *slog.Logger
}

// Runner drives one conversation turn: it alternates between asking the model
// for the next step and acting on the tool calls the model requested, until
// the model answers in plain text or a gated call suspends the run.
type Runner struct {
	client   aisdk.ModelClient
	toolbox  *Toolbox
	gate     *Gate
	maxSteps int
	system   string
	logger   *slog.Logger
}

// NewRunner creates a runner from config.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Client == nil {
		return nil, ErrModelClientRequired
	}
	toolbox := cfg.Toolbox
	if toolbox == nil {
		toolbox = NewToolbox()
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client:   cfg.Client,
		toolbox:  toolbox,
		gate:     cfg.Gate,
		maxSteps: maxSteps,
		system:   cfg.SystemPrompt,
		logger:   logger.With("component", "runner"),
	}, nil
}

// RunRequest carries everything a single turn needs. History must already be
// sanitized; UserMessage is nil when resuming a suspended run.
type RunRequest struct {
	ConversationID uuid.UUID
	Identity       Identity
	History        []*aisdk.Message
	UserMessage    *aisdk.Message
	Resume         *Checkpoint
	Decision       Decision
	Events         *stream.Multiplexer
	Flush          FlushFunc
	Checkpoints    CheckpointStore
}

// RunResult is the outcome of one turn. Exactly one of Suspended and Final is
// meaningful: a suspended turn has no final message yet. Usage accumulates
// across every model call the turn made, including calls made before a
// failure.
type RunResult struct {
	Suspended bool
	Final     *aisdk.Message
	Usage     aisdk.Usage
}

// Run executes one turn. On suspension the checkpoint has been saved and the
// confirmation and interrupted events emitted; the caller resumes later with
// RunRequest.Resume and a decision. A failed run still returns the result so
// far, so the caller can account for tokens already spent.
func (r *Runner) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if req.Flush == nil {
		return nil, ErrFlushRequired
	}
	if req.Events == nil {
		return nil, fmt.Errorf("run request requires an event multiplexer")
	}
	if req.Checkpoints == nil {
		return nil, fmt.Errorf("run request requires a checkpoint store")
	}

	ctx = WithIdentity(ctx, req.Identity)
	logger := r.logger.With("conversation_id", req.ConversationID)

	transcript := make([]*aisdk.Message, 0, len(req.History)+2)
	if r.system != "" {
		transcript = append(transcript, &aisdk.Message{Role: aisdk.RoleSystem, Content: r.system})
	}
	transcript = append(transcript, req.History...)

	result := &RunResult{}

	if req.UserMessage != nil {
		if err := req.Flush(ctx, req.UserMessage); err != nil {
			return result, fmt.Errorf("flush user message: %w", err)
		}
		transcript = append(transcript, req.UserMessage)
	}

	if req.Resume != nil {
		if !req.Decision.Valid() {
			return result, ErrDecisionRequired
		}
		transcript = ensureBatch(transcript, req.Resume)
		logger.Info("resuming suspended run", "decision", req.Decision, "pending_calls", len(req.Resume.Calls)-req.Resume.Next)
		suspended, err := r.act(ctx, req, &transcript, req.Resume, req.Decision)
		if err != nil {
			return result, err
		}
		if suspended {
			result.Suspended = true
			return result, nil
		}
	}

	for step := 0; step < r.maxSteps; step++ {
		msg, usage, err := r.ask(ctx, req, transcript)
		result.Usage.PromptTokens += usage.PromptTokens
		result.Usage.CompletionTokens += usage.CompletionTokens
		result.Usage.TotalTokens += usage.TotalTokens
		if err != nil {
			return result, err
		}

		if len(msg.ToolCalls) == 0 {
			if err := req.Flush(ctx, msg); err != nil {
				return result, fmt.Errorf("flush assistant message: %w", err)
			}
			if err := req.Checkpoints.Clear(ctx, req.ConversationID); err != nil {
				logger.Warn("failed to clear checkpoint", "error", err)
			}
			result.Final = msg
			return result, nil
		}

		for i := range msg.ToolCalls {
			call := &msg.ToolCalls[i]
			req.Events.ToolCall(call.ID, call.Function.Name, call.Function.Arguments)
		}
		if err := req.Flush(ctx, msg); err != nil {
			return result, fmt.Errorf("flush assistant message: %w", err)
		}
		transcript = append(transcript, msg)

		cp := &Checkpoint{
			ConversationID: req.ConversationID,
			UserID:         req.Identity.UserID,
			Calls:          msg.ToolCalls,
		}
		suspended, err := r.act(ctx, req, &transcript, cp, "")
		if err != nil {
			return result, err
		}
		if suspended {
			result.Suspended = true
			return result, nil
		}
	}

	return result, ErrMaxStepsExceeded
}

// ask streams one model step, forwarding token deltas as they arrive, and
// returns the aggregated assistant message.
func (r *Runner) ask(ctx context.Context, req *RunRequest, transcript []*aisdk.Message) (*aisdk.Message, aisdk.Usage, error) {
	chatReq := &aisdk.ChatCompletionRequest{
		Messages: transcript,
		Tools:    ToChatTools(r.toolbox.Tools()),
		User:     req.Identity.UserID.String(),
	}

	st, err := r.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, aisdk.Usage{}, fmt.Errorf("create completion stream: %w", err)
	}
	defer st.Close()

	var agg aisdk.StreamAggregator
	for {
		chunk, err := st.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, agg.Usage, fmt.Errorf("read completion stream: %w", err)
		}
		agg.Add(chunk)
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta != nil {
			req.Events.Token(chunk.Choices[0].Delta.Content)
		}
	}

	return agg.Message(), agg.Usage, nil
}

// act executes the checkpoint's tool calls in order starting at cp.Next.
// Reaching a gated call saves the checkpoint and suspends, unless the call is
// the one the decision answers. Reports whether the run suspended.
func (r *Runner) act(ctx context.Context, req *RunRequest, transcript *[]*aisdk.Message, cp *Checkpoint, decision Decision) (bool, error) {
	resumeIndex := -1
	if decision.Valid() {
		resumeIndex = cp.Next
	}

	for i := cp.Next; i < len(cp.Calls); i++ {
		call := &cp.Calls[i]
		gated := r.gate.Requires(call.Function.Name)

		if gated && i != resumeIndex {
			cp.Next = i
			if err := req.Checkpoints.Save(ctx, cp); err != nil {
				return false, fmt.Errorf("save checkpoint: %w", err)
			}
			req.Events.Confirmation(call.Function.Name, call.Function.Arguments, r.gate.Prompt(call))
			req.Events.Interrupted(req.ConversationID.String())
			return true, nil
		}

		var resp *aisdk.ToolResponse
		if gated && decision == DecisionCancel {
			resp = CancelledResponse()
		} else {
			resp = r.execute(ctx, call)
		}

		payload := string(resp.Content)
		req.Events.ToolResult(call.Function.Name, payload)

		toolMsg := &aisdk.Message{
			Role:       aisdk.RoleTool,
			Content:    payload,
			Name:       call.Function.Name,
			ToolCallID: call.ID,
		}
		if err := req.Flush(ctx, toolMsg); err != nil {
			return false, fmt.Errorf("flush tool message: %w", err)
		}
		*transcript = append(*transcript, toolMsg)

		// A resumed batch advances its durable position past every executed
		// call, so retrying after a later failure never runs one twice.
		if decision.Valid() {
			cp.Next = i + 1
			if err := req.Checkpoints.Save(ctx, cp); err != nil {
				return false, fmt.Errorf("save checkpoint: %w", err)
			}
		}
	}

	return false, nil
}

// execute runs one tool call, folding failures into an error response so the
// model can read them and keep going.
func (r *Runner) execute(ctx context.Context, call *aisdk.ToolCall) *aisdk.ToolResponse {
	resp, err := r.toolbox.ExecuteTool(ctx, call)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", call.Function.Name, "error", err)
		return &aisdk.ToolResponse{
			Type:    "text",
			Content: []byte("tool error: " + err.Error()),
			IsError: true,
		}
	}
	return resp
}

// ensureBatch makes sure the transcript declares every call in the
// checkpointed batch. Load-time sanitization strips calls whose results are
// not stored yet, so a suspended batch comes back incomplete: fully, when the
// run suspended on its first call, or partially, when earlier calls in the
// batch already produced results. The pending calls are restored from the
// checkpoint so their results can pair up.
func ensureBatch(transcript []*aisdk.Message, cp *Checkpoint) []*aisdk.Message {
	if len(cp.Calls) == 0 {
		return transcript
	}

	declared := make(map[string]struct{})
	for _, msg := range transcript {
		for _, call := range msg.ToolCalls {
			declared[call.ID] = struct{}{}
		}
	}
	complete := true
	for _, call := range cp.Calls {
		if _, ok := declared[call.ID]; !ok {
			complete = false
			break
		}
	}
	if complete {
		return transcript
	}

	// Re-merge the full batch into the assistant message that still declares
	// part of it.
	for _, msg := range transcript {
		for _, call := range msg.ToolCalls {
			for _, cpCall := range cp.Calls {
				if call.ID == cpCall.ID {
					msg.ToolCalls = cp.Calls
					return transcript
				}
			}
		}
	}

	return append(transcript, &aisdk.Message{
		Role:      aisdk.RoleAssistant,
		ToolCalls: cp.Calls,
	})
}
