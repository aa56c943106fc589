// Package negotiate drives multi-party price negotiations. The
// Orchestrator advances a room through bounded rounds: the buyer speaks,
// mentioned sellers (or all of them) reply concurrently under a
// parallelism cap with per-seller failure isolation, and a decision
// engine either accepts a standing offer or continues. Progress is
// surfaced as a typed event stream ending in exactly one terminal
// event.
//
// The strict inventory matcher, the mention router, the hard offer
// validator, and the seller pre-selection check are exported separately
// so callers can vet rooms before starting a run.
package negotiate
