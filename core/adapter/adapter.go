package adapter

import (
	"github.com/google/uuid"

	"inventory-bridge/core/payload"
)

// Inventory is a live, mutable inventory on this server. It satisfies both
// payload.Source and payload.Sink so it can be encoded and decoded directly.
type Inventory interface {
	// Size returns the number of slots.
	Size() int
	// Item returns the record at slot, or false when the slot is empty.
	Item(slot int) (*payload.ItemRecord, bool)
	// SetItem places an item into slot. A nil item empties the slot.
	SetItem(slot int, item *payload.ItemRecord) error
	// Clear empties every slot.
	Clear()
}

// Player is the host-side view of a connected player. The sync service only
// touches players through this interface, so any host (game server plugin,
// test harness, in-memory registry) can plug in.
type Player interface {
	UUID() uuid.UUID
	Name() string

	Inventory() Inventory
	EnderChest() Inventory

	TotalExperience() int
	Level() int
	SetExperience(total, level int)

	Health() float64
	SetHealth(health float64)

	FoodLevel() int
	SetFoodLevel(level int)
}

// Provider resolves currently-connected players.
type Provider interface {
	// Player returns the connected player with the given id, or false when
	// the player is not resident on this server.
	Player(id uuid.UUID) (Player, bool)
}
