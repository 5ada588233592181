// Package adapter defines the host abstraction the sync service works
// against.
//
// A host is whatever process owns live player state: a game server, a test
// harness, or the built-in in-memory registry. The sync service never
// reaches into host internals; it clears and fills inventories, reads and
// writes vitals, all through the Player and Inventory interfaces.
//
// The Memory implementations back the standalone server mode and the test
// suite.
package adapter
