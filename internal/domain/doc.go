// Package domain contains the core entities and value objects of the
// lifecycle engine.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (terminals, signals, logging) and contains only
// pure types and logic shared by the engine, the recovery handler, and the
// public facade.
//
// # Entities
//
//   - [Phase]: One of the six ordered lifecycle phases, with its progress band
//   - [Hook]: A unit of work registered against a phase
//   - [HookContext]: The read view handed to an executing hook
//   - [Decision]: The outcome of a shutdown interceptor (proceed or veto)
//   - [RetryConfig]: Retry and backoff policy, live-updatable via [RetryOverrides]
//   - [LifecycleError]: A structured record of a hook failure
//
// # Errors
//
// Sentinel errors returned by the public API live in errors.go and can be
// checked with errors.Is.
package domain
