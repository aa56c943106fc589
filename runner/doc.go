// Package runner implements the execution layer that sits between the
// public façade and the negotiation orchestrator.
//
// The Runner manages the complete lifecycle of a negotiation run: it loads
// the room from the configured store, launches the orchestrator, checkpoints
// room state as events arrive, and forwards the event stream to the caller.
// It also tracks in-flight runs so they can be cancelled by ID.
//
// # Responsibilities (abridged)
//   - Run launch + terminal-status guarding
//   - Event forwarding with save-before-forward persistence
//   - Run lifecycle management & cancellation
//
// See runner.go for the operational implementation details.
package runner
