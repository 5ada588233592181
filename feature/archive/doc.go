// Package archive keeps a best-effort history of saved inventory payloads in
// object storage.
//
// Every successful snapshot save hands its payload to ArchiveSnapshot, which
// uploads it under <player>/<server>/<timestamp>.json. Uploads never fail the
// sync that produced them; a lost archive copy only costs history, the
// authoritative row lives in the datastore.
//
// Operators browse and retrieve the history through the /archive endpoints
// and trim it with Prune.
package archive
