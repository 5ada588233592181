// Package database owns the shared MySQL datastore connection and the
// snapshot/audit SQL.
//
// # Connection manager
//
// The Manager wraps GORM's pooled MySQL connection in a two-state machine:
// ACTIVE (pool live, schema bootstrapped) and STANDBY (no usable
// connection). Initialization failures never propagate; the process keeps
// running degraded and every dependent operation fails fast with ErrStandby
// until an administrator issues a reconnect. There is no retry timer:
// recovery is always explicit.
//
// # Schema
//
// Initialize idempotently creates three prefix-parameterised tables:
// inventories (unique per player+server, last-writer-wins timestamp),
// sync_log (append-only audit trail) and version_mappings (persisted
// compatibility overrides).
//
// # Repository
//
// The Repository holds the raw SQL for snapshot upserts, authoritative
// loads (own-server row first, then the newest row across all servers),
// audit inserts and version-override access.
package database
