// Package memory provides minimal conversation persistence.
//
// Persistence model:
//   - Only user and assistant text turns are stored (role + text). Tool
//     turns are transient: they only matter inside the query that produced
//     them.
package memory
