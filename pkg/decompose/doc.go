// Package decompose classifies free-text wireless simulation tasks and
// extracts the parameters they mention.
//
// Classification is an ordered rule table: the first rule whose keywords
// match the lower-cased text decides the task type. Extractors report an
// Optional so that "not mentioned" is distinct from a zero value. The result
// is a domain.TaskDecomposition, which FormatForPrompt renders as a guidance
// block that is appended to the planner prompt.
//
// Decomposition is pure and deterministic and never fails.
package decompose
