// Package compat maps item identifiers across game-data versions.
//
// Newer game versions introduce items that older servers cannot materialise.
// When a snapshot written by a newer server is loaded on an older one, the
// Mappings table substitutes each unavailable identifier with a broadly
// available fallback (e.g. minecraft:bundle becomes minecraft:leather below
// 1.21.2). Mapping is one-directional: snapshots are never upgraded.
//
// # Construction
//
// The table is an explicit, injectable object rather than package state:
//
//	mappings := compat.NewMappings()
//	mappings.Put("minecraft:bundle", "minecraft:chest") // persisted override
//
// # Version rules
//
// Availability is decided by a small set of version-floor rules, each pairing
// a "1.21.x" floor with an identifier predicate. Comparison looks at the
// patch component only; unparseable versions fail open and are treated as
// current.
package compat
