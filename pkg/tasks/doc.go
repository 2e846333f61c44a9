// Package tasks is the integration boundary between the template engine and
// a task runner.
//
// # Overview
//
// A runner builds a context with ContextBuilder (facts, variables, prior
// registered results, environment), asks Gate.ShouldRun whether a task's
// when clauses hold, renders the task's templated fields with RenderFields,
// and captures the outcome as a Result registered for later tasks.
//
// Execution itself (package managers, services, remote transport) lives
// elsewhere; this package only shapes data in and out of the engine.
package tasks
