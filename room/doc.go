// Package room houses concrete implementations of the core.RoomStore.
// The interface itself lives in the core package to centralize domain
// contracts; keeping only implementations here prevents the engine
// packages from depending on concrete storage.
//
// Additional backends (Postgres, Redis, etc.) belong in sub-packages,
// like the bundled sqlite store, so only the wiring layer decides which
// implementation to instantiate.
package room
