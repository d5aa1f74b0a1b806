// Package chat defines the conversation domain types shared across the host.
//
// Includes:
//   - Turn: one transcript entry authored by the user, the model, or a tool outcome.
//   - ToolCallRequest: a model-issued instruction naming a tool plus arguments.
//   - ToolDescriptor: name, description and JSON input schema as advertised to the model.
//   - Invariants: a Tool turn answers exactly one request from the immediately
//     preceding Assistant turn; transcripts are append-only within a query.
package chat
