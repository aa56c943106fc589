// Package core defines the domain types shared across the negotiation
// engine: rooms, sellers, buyer constraints, messages, conversation logs,
// events and the stores that persist them.
//
// The types here carry no behavior beyond validation, state transitions
// and defensive copying. Orchestration lives in the negotiate package and
// model access in the model package.
package core
