// Package sync implements the cross-server inventory synchronization
// orchestrator.
//
// One snapshot row per (player, server) lives in the shared datastore. On
// join the service loads the authoritative row (own server first, otherwise
// the most recently updated row from any server) and applies it to the live
// player; on leave it serializes the live state back. Conflicts between
// servers are resolved by last-writer-wins on the store-assigned timestamp;
// overlapping sessions on two servers are an accepted hazard, not detected
// here.
//
// All sync work runs off the caller's thread. An atomic per-player guard
// rejects a second attempt while one is in flight; it never queues. Failures
// of any kind become FAILED rows in the sync_log audit table and are never
// propagated to the event source.
//
// The scan path (ScanPlayerFiles) seeds snapshot rows for players who have
// never synced, decoding offline save files with core/nbt when the player is
// not connected.
package sync
