// Package payload implements the versioned JSON format for inventory
// snapshots.
//
// # Wire shape
//
//	{
//	  "size": 41,
//	  "minecraft_version": "1.21.8",
//	  "data_version": 4082,
//	  "items": {
//	    "0": {"id": "minecraft:stone", "count": 64, ...},
//	    "9": {"id": "minecraft:bundle", "count": 1, "meta": {"container": {...}}}
//	  }
//	}
//
// Empty slots are omitted; the absence of a slot key means the slot is empty.
// Item values come in two shapes for backward compatibility: a native JSON
// object (current) or a JSON string wrapping the same object (legacy). Both
// decode identically.
//
// # Compatibility
//
// On decode, each identifier is checked against the runtime's game version
// through compat.Mappings. Unavailable identifiers are substituted with their
// fallback before the record reaches the sink; identifiers the registry does
// not know at all drop the slot with a warning. Only top-level structural
// corruption aborts a decode.
package payload
