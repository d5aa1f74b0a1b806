package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mithul-Joseph/mcp-project/chat"
	"github.com/Mithul-Joseph/mcp-project/internal/telemetry"
)

// ModelClient is the inference endpoint the loop talks to. A nil or empty
// catalog means no tools are offered and the client must omit tool-use framing.
type ModelClient interface {
	Chat(ctx context.Context, transcript []chat.Turn, catalog []chat.ToolDescriptor) (chat.Turn, error)
}

// DefaultMaxTurns bounds model invocations per query so a model that keeps
// requesting tools cannot loop forever.
const DefaultMaxTurns = 10

// ErrMaxTurnsExceeded is returned when a query hits the model-invocation bound
// before producing a turn without tool-call requests.
var ErrMaxTurnsExceeded = errors.New("maximum model turns exceeded")

// Loop owns one conversation's request/response cycle with the model.
type Loop struct {
	model      ModelClient
	reg        *Registry
	dispatcher *Dispatcher
	maxTurns   int

	// mu serializes queries; no two model invocations for the same
	// conversation are ever in flight concurrently.
	mu sync.Mutex
}

// Config configures a Loop. Model and Registry are required.
type Config struct {
	Model    ModelClient
	Registry *Registry

	// MaxTurns caps model invocations per query; DefaultMaxTurns when <= 0.
	MaxTurns int

	// CallTimeout bounds a single tool invocation; DefaultCallTimeout when <= 0.
	CallTimeout time.Duration
}

func New(cfg Config) (*Loop, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("cfg.Model is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("cfg.Registry is required")
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	return &Loop{
		model:      cfg.Model,
		reg:        cfg.Registry,
		dispatcher: NewDispatcher(cfg.Registry, cfg.CallTimeout),
		maxTurns:   cfg.MaxTurns,
	}, nil
}

// ProcessQuery runs one query to completion: it appends the user turn, calls
// the model with the transcript and the registry catalog, dispatches any
// requested tools and resubmits, until a model turn carries no tool-call
// requests. That turn's text is the final answer.
//
// The transcript built so far is returned in every case. A model-invocation
// error aborts only this query; the registry and sessions remain usable. On
// cancellation mid-dispatch the in-flight step's tool turns are discarded
// rather than appended partially.
func (l *Loop) ProcessQuery(ctx context.Context, query string) (string, []chat.Turn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	queryID, ok := telemetry.QueryIDFromContext(ctx)
	if !ok {
		queryID = fmt.Sprintf("query-%d", time.Now().UnixNano())
		ctx = telemetry.WithQueryID(ctx, queryID)
	}
	start := time.Now()

	transcript := []chat.Turn{chat.UserTurn(query)}

	for calls := 0; ; calls++ {
		if calls >= l.maxTurns {
			telemetry.Emit("query_done", map[string]any{
				"query_id": queryID, "model_calls": calls, "result": "max_turns",
			})
			return "", transcript, ErrMaxTurnsExceeded
		}
		if err := ctx.Err(); err != nil {
			return "", transcript, err
		}

		turn, err := l.model.Chat(ctx, transcript, l.reg.Catalog())
		if err != nil {
			telemetry.Emit("query_done", map[string]any{
				"query_id": queryID, "model_calls": calls, "result": "model_error",
			})
			return "", transcript, fmt.Errorf("model invocation failed: %w", err)
		}
		transcript = append(transcript, turn)
		telemetry.Emit("model_call", map[string]any{
			"query_id":   queryID,
			"tool_calls": len(turn.ToolCalls),
			"text_len":   len(turn.Text),
		})

		if !turn.HasToolCalls() {
			telemetry.Emit("query_done", map[string]any{
				"query_id":    queryID,
				"model_calls": calls + 1,
				"result":      "ok",
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return turn.Text, transcript, nil
		}

		outcomes := l.dispatcher.Dispatch(ctx, turn.ToolCalls)
		if err := ctx.Err(); err != nil {
			// Discard this step's outcomes instead of appending a partial set.
			return "", transcript, err
		}
		for _, o := range outcomes {
			transcript = append(transcript, o.ToTurn())
		}
	}
}
