package nbt

// Well-known field names inside a player save file.
const (
	fieldInventory  = "Inventory"
	fieldEnderItems = "EnderItems"
	fieldXpTotal    = "XpTotal"
	fieldXpLevel    = "XpLevel"
	fieldHealth     = "Health"
	fieldFoodLevel  = "foodLevel"
)

// PlayerData is a typed view over a decoded player save file. It exposes the
// inventory-relevant subset used by the offline bootstrap path.
type PlayerData struct {
	root Compound
}

// NewPlayerData wraps a decoded player compound.
func NewPlayerData(root Compound) PlayerData {
	return PlayerData{root: root}
}

// Inventory returns the main-inventory item compounds, one per occupied slot.
func (p PlayerData) Inventory() []Compound {
	return p.root.GetCompoundList(fieldInventory)
}

// EnderItems returns the ender-chest item compounds.
func (p PlayerData) EnderItems() []Compound {
	return p.root.GetCompoundList(fieldEnderItems)
}

// HasEnderItems reports whether the save file carries an ender-chest list.
func (p PlayerData) HasEnderItems() bool {
	return p.root.Has(fieldEnderItems)
}

// ExperienceTotal returns the player's total experience, or 0.
func (p PlayerData) ExperienceTotal() int {
	return p.root.GetInt(fieldXpTotal)
}

// ExperienceLevel returns the player's experience level, or 0.
func (p PlayerData) ExperienceLevel() int {
	return p.root.GetInt(fieldXpLevel)
}

// Health returns the player's health, defaulting to 20 when absent.
func (p PlayerData) Health() float64 {
	if !p.root.Has(fieldHealth) {
		return 20.0
	}
	return p.root.GetFloat(fieldHealth)
}

// FoodLevel returns the player's hunger, defaulting to 20 when absent.
func (p PlayerData) FoodLevel() int {
	if !p.root.Has(fieldFoodLevel) {
		return 20
	}
	return p.root.GetInt(fieldFoodLevel)
}

// ItemSlot returns the slot index of an inventory item compound. Slots are
// stored as signed bytes; masking recovers indices above 127.
func ItemSlot(item Compound) int {
	return item.GetInt("Slot") & 0xFF
}

// ItemID returns the item identifier of an inventory item compound.
func ItemID(item Compound) string {
	return item.GetString("id")
}

// ItemCount returns the stack count, accepting both the modern lowercase
// field and the legacy byte-typed one. Defaults to 1.
func ItemCount(item Compound) int {
	if item.Has("count") {
		return item.GetInt("count")
	}
	if item.Has("Count") {
		return item.GetInt("Count")
	}
	return 1
}
