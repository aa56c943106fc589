// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside the negotiation
// engine.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Allow per-request sampling overrides (decision calls run colder and
//     shorter than negotiation turns)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (agents, the orchestrator) remain decoupled from
// vendor SDKs.
package model
