package orchestrator

import (
	"fmt"

	"github.com/Mithul-Joseph/mcp-project/chat"
)

// OutcomeKind classifies the result of one dispatched tool-call request.
type OutcomeKind string

const (
	OutcomeOK             OutcomeKind = "ok"
	OutcomeUnknownTool    OutcomeKind = "unknown_tool"
	OutcomeExecutionError OutcomeKind = "execution_error"
	OutcomeNoProviders    OutcomeKind = "no_providers"
	OutcomeRoutingError   OutcomeKind = "routing_error"
)

// Outcome is the success or failure of one tool invocation. Text already holds
// the content that goes into the transcript, so conversion to a tool turn is a
// plain copy.
type Outcome struct {
	RequestID string
	Kind      OutcomeKind
	Text      string
}

// Failed reports whether the outcome carries an error rather than a result.
func (o Outcome) Failed() bool {
	return o.Kind != OutcomeOK
}

// ToTurn renders the outcome as the tool turn answering its request.
func (o Outcome) ToTurn() chat.Turn {
	return chat.ToolTurn(o.RequestID, o.Text, o.Failed())
}

func successOutcome(requestID, text string) Outcome {
	return Outcome{RequestID: requestID, Kind: OutcomeOK, Text: text}
}

func noProvidersOutcome(req chat.ToolCallRequest) Outcome {
	return Outcome{
		RequestID: req.ID,
		Kind:      OutcomeNoProviders,
		Text:      fmt.Sprintf("Error: no provider connections available to execute tool %q.", req.Name),
	}
}

func unknownToolOutcome(req chat.ToolCallRequest) Outcome {
	return Outcome{
		RequestID: req.ID,
		Kind:      OutcomeUnknownTool,
		Text:      fmt.Sprintf("Error: requested tool %q was not in the list of available tools.", req.Name),
	}
}

func routingErrorOutcome(req chat.ToolCallRequest) Outcome {
	return Outcome{
		RequestID: req.ID,
		Kind:      OutcomeRoutingError,
		Text:      fmt.Sprintf("Error: tool %q is advertised but has no owning provider; internal routing inconsistency.", req.Name),
	}
}

func executionErrorOutcome(req chat.ToolCallRequest, err error) Outcome {
	return Outcome{
		RequestID: req.ID,
		Kind:      OutcomeExecutionError,
		Text:      fmt.Sprintf("Error calling tool %q: %v", req.Name, err),
	}
}
