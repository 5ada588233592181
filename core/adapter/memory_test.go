package adapter_test

import (
	"testing"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/payload"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryInventory_SetAndClear(t *testing.T) {
	inv := adapter.NewMemoryInventory(9)

	require.NoError(t, inv.SetItem(4, &payload.ItemRecord{ID: "minecraft:stone", Count: 32}))

	item, ok := inv.Item(4)
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", item.ID)

	_, ok = inv.Item(5)
	assert.False(t, ok)

	inv.Clear()
	_, ok = inv.Item(4)
	assert.False(t, ok)
}

func TestMemoryInventory_RejectsOutOfRange(t *testing.T) {
	inv := adapter.NewMemoryInventory(9)

	assert.Error(t, inv.SetItem(9, &payload.ItemRecord{ID: "minecraft:dirt"}))
	assert.Error(t, inv.SetItem(-1, &payload.ItemRecord{ID: "minecraft:dirt"}))
}

func TestMemoryInventory_NilItemEmptiesSlot(t *testing.T) {
	inv := adapter.NewMemoryInventory(9)

	require.NoError(t, inv.SetItem(0, &payload.ItemRecord{ID: "minecraft:dirt", Count: 1}))
	require.NoError(t, inv.SetItem(0, nil))

	_, ok := inv.Item(0)
	assert.False(t, ok)
}

func TestMemoryPlayer_Defaults(t *testing.T) {
	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")

	assert.Equal(t, "Steve", p.Name())
	assert.Equal(t, adapter.MainInventorySize, p.Inventory().Size())
	assert.Equal(t, adapter.EnderChestSize, p.EnderChest().Size())
	assert.Equal(t, 20.0, p.Health())
	assert.Equal(t, 20, p.FoodLevel())
	assert.Zero(t, p.TotalExperience())
}

func TestMemoryProvider_ConnectDisconnect(t *testing.T) {
	reg := adapter.NewMemoryProvider()
	p := adapter.NewMemoryPlayer(uuid.New(), "Alex")

	_, ok := reg.Player(p.UUID())
	assert.False(t, ok)

	reg.Connect(p)
	got, ok := reg.Player(p.UUID())
	require.True(t, ok)
	assert.Equal(t, p.UUID(), got.UUID())

	reg.Disconnect(p.UUID())
	_, ok = reg.Player(p.UUID())
	assert.False(t, ok)
}
