// Package orchestrator drives the tool-call loop between the model client and
// the connected MCP providers.
//
// Pieces:
//   - Registry: tool name -> owning provider session, plus the ordered catalog
//     advertised to the model. Built during connection setup, read-only after.
//   - Dispatcher: executes the tool-call requests of one model turn in order
//     and renders every result or failure into a tool turn.
//   - Loop: appends the user turn, exchanges with the model, dispatches tools,
//     and stops on the first assistant turn without tool-call requests.
//
// Invariant:
//   - one tool turn per dispatched request, appended in request order, so every
//     tool_use is answered before the next model invocation.
package orchestrator
