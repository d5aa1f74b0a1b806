package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Mithul-Joseph/mcp-project/chat"
	"github.com/Mithul-Joseph/mcp-project/internal/telemetry"
)

// registryView is the read-only registry surface the dispatcher consumes.
type registryView interface {
	Resolve(name string) (Session, bool)
	Advertised(name string) bool
	ProviderCount() int
}

// DefaultCallTimeout bounds a single tool invocation.
const DefaultCallTimeout = 60 * time.Second

// Dispatcher executes the tool-call requests of one model turn against the
// registered provider sessions.
type Dispatcher struct {
	reg         registryView
	callTimeout time.Duration
}

func NewDispatcher(reg registryView, callTimeout time.Duration) *Dispatcher {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Dispatcher{reg: reg, callTimeout: callTimeout}
}

// Dispatch runs the requests sequentially in input order and returns one
// outcome per request. A failing invocation becomes a failure outcome; it
// never aborts the remaining requests or the surrounding loop.
//
// The only requests without an outcome are malformed ones (missing name or
// arguments): those are skipped with a diagnostic and produce no transcript
// entry, since there is no well-formed tool_use for a result to answer.
func (d *Dispatcher) Dispatch(ctx context.Context, reqs []chat.ToolCallRequest) []Outcome {
	queryID, _ := telemetry.QueryIDFromContext(ctx)
	telemetry.Emit("tool_dispatch", map[string]any{
		"query_id": queryID,
		"requests": len(reqs),
	})

	outcomes := make([]Outcome, 0, len(reqs))
	noProviders := d.reg.ProviderCount() == 0

	for _, req := range reqs {
		if req.Name == "" || req.Arguments == nil {
			fmt.Fprintf(os.Stderr, "warning: skipping malformed tool call (id=%q name=%q)\n", req.ID, req.Name)
			telemetry.Emit("tool_call_malformed", map[string]any{
				"request_id": req.ID,
				"tool_name":  req.Name,
			})
			continue
		}
		outcomes = append(outcomes, d.dispatchOne(ctx, req, noProviders))
	}
	return outcomes
}

func (d *Dispatcher) dispatchOne(ctx context.Context, req chat.ToolCallRequest, noProviders bool) Outcome {
	queryID, _ := telemetry.QueryIDFromContext(ctx)
	start := time.Now()
	emit := func(o Outcome) Outcome {
		fields := map[string]any{
			"tool_name":   req.Name,
			"request_id":  req.ID,
			"outcome":     string(o.Kind),
			"duration_ms": time.Since(start).Milliseconds(),
			"output_size": len(o.Text),
			"query_id":    queryID,
		}
		telemetry.Emit("tool_exec", fields)
		return o
	}

	// Zero providers registered: report without attempting resolution.
	if noProviders {
		return emit(noProvidersOutcome(req))
	}

	session, ok := d.reg.Resolve(req.Name)
	if !ok {
		// Advertised but unowned should be unreachable while the registry
		// updates mapping and catalog together; guarded anyway.
		if d.reg.Advertised(req.Name) {
			return emit(routingErrorOutcome(req))
		}
		return emit(unknownToolOutcome(req))
	}

	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	text, err := session.CallTool(callCtx, req.Name, req.Arguments)
	if err != nil {
		return emit(executionErrorOutcome(req, err))
	}
	return emit(successOutcome(req.ID, text))
}
