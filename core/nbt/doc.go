// Package nbt decodes the self-describing binary tag format used by
// per-player save files.
//
// The decoder implements the primitive, array, list and compound subset
// needed to recover inventory, ender chest, experience and vitals from a
// player who is not resident in memory. It is not a general-purpose NBT
// library: writing is unsupported and exotic top-level shapes are rejected.
//
// # Failure semantics
//
// Stream truncation or a non-compound top-level tag fails the whole read
// with ErrNoData. An unknown tag in the middle of a compound abandons the
// remainder of that read but keeps every field decoded before it. Callers
// treat ErrNoData as "cannot bootstrap this player from file", never as an
// empty inventory, which would erase real progress on the next save.
//
// # Usage
//
//	root, err := nbt.ReadCompressed(file)
//	if err != nil {
//	    return err
//	}
//	player := nbt.NewPlayerData(root)
//	for _, item := range player.Inventory() {
//	    slot, id := nbt.ItemSlot(item), nbt.ItemID(item)
//	    ...
//	}
package nbt
