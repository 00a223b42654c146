// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing callers to plug any
// structured logger. It also offers a richer OracleLogger with contextual
// helpers (session, oracle, component) and domain specific logging helpers for
// inference calls, encounter transitions and event routing.
package logging
