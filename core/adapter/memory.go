package adapter

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"inventory-bridge/core/payload"
)

// Standard inventory sizes.
const (
	MainInventorySize = 41
	EnderChestSize    = 27
)

// MemoryInventory is a slot-indexed in-memory Inventory.
type MemoryInventory struct {
	mu    sync.RWMutex
	slots []*payload.ItemRecord
}

// NewMemoryInventory creates an empty inventory with the given slot count.
func NewMemoryInventory(size int) *MemoryInventory {
	return &MemoryInventory{slots: make([]*payload.ItemRecord, size)}
}

func (inv *MemoryInventory) Size() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.slots)
}

func (inv *MemoryInventory) Item(slot int) (*payload.ItemRecord, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if slot < 0 || slot >= len(inv.slots) || inv.slots[slot] == nil {
		return nil, false
	}
	return inv.slots[slot], true
}

func (inv *MemoryInventory) SetItem(slot int, item *payload.ItemRecord) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if slot < 0 || slot >= len(inv.slots) {
		return fmt.Errorf("slot %d out of range 0..%d", slot, len(inv.slots)-1)
	}
	inv.slots[slot] = item
	return nil
}

func (inv *MemoryInventory) Clear() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for i := range inv.slots {
		inv.slots[i] = nil
	}
}

// MemoryPlayer is an in-memory Player used by tests and embedding hosts that
// manage player state themselves.
type MemoryPlayer struct {
	id   uuid.UUID
	name string

	mu         sync.RWMutex
	inventory  *MemoryInventory
	enderChest *MemoryInventory
	experience int
	level      int
	health     float64
	foodLevel  int
}

// NewMemoryPlayer creates a player with full vitals and empty inventories.
func NewMemoryPlayer(id uuid.UUID, name string) *MemoryPlayer {
	return &MemoryPlayer{
		id:         id,
		name:       name,
		inventory:  NewMemoryInventory(MainInventorySize),
		enderChest: NewMemoryInventory(EnderChestSize),
		health:     20,
		foodLevel:  20,
	}
}

func (p *MemoryPlayer) UUID() uuid.UUID { return p.id }

func (p *MemoryPlayer) Name() string { return p.name }

func (p *MemoryPlayer) Inventory() Inventory { return p.inventory }

func (p *MemoryPlayer) EnderChest() Inventory { return p.enderChest }

func (p *MemoryPlayer) TotalExperience() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.experience
}

func (p *MemoryPlayer) Level() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

func (p *MemoryPlayer) SetExperience(total, level int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experience = total
	p.level = level
}

func (p *MemoryPlayer) Health() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

func (p *MemoryPlayer) SetHealth(health float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health = health
}

func (p *MemoryPlayer) FoodLevel() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.foodLevel
}

func (p *MemoryPlayer) SetFoodLevel(level int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.foodLevel = level
}

// MemoryProvider is a concurrency-safe registry of connected MemoryPlayers.
type MemoryProvider struct {
	mu      sync.RWMutex
	players map[uuid.UUID]Player
}

// NewMemoryProvider creates an empty registry.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{players: make(map[uuid.UUID]Player)}
}

// Connect registers a player as resident on this server.
func (r *MemoryProvider) Connect(p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.UUID()] = p
}

// Disconnect removes a player from the registry.
func (r *MemoryProvider) Disconnect(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
}

func (r *MemoryProvider) Player(id uuid.UUID) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	return p, ok
}
