package payload

// ItemRecord is the serialized form of a single item stack. It exists only
// inside an inventory payload; it is never persisted on its own.
type ItemRecord struct {
	ID               string    `json:"id"`
	Count            int       `json:"count"`
	MinecraftVersion string    `json:"minecraft_version,omitempty"`
	DataVersion      int       `json:"data_version,omitempty"`
	Meta             *ItemMeta `json:"meta,omitempty"`
}

// ItemMeta carries the optional named metadata of an item stack.
type ItemMeta struct {
	CustomName      string         `json:"custom_name,omitempty"`
	Lore            []string       `json:"lore,omitempty"`
	Enchantments    map[string]int `json:"enchantments,omitempty"`
	Damage          *int           `json:"damage,omitempty"`
	CustomModelData *int           `json:"custom_model_data,omitempty"`
	// Container holds the contents of containers carried as items
	// (bundles, shulker boxes). Nested recursively.
	Container *Container `json:"container,omitempty"`
}

// Container is the serialized contents of a container held as an item.
// Slot keys are decimal strings; absent keys mean empty slots.
type Container struct {
	Size  int                    `json:"size"`
	Items map[string]*ItemRecord `json:"items"`
}

// Clone returns a deep copy of the record.
func (r *ItemRecord) Clone() *ItemRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Meta != nil {
		meta := *r.Meta
		if r.Meta.Lore != nil {
			meta.Lore = append([]string(nil), r.Meta.Lore...)
		}
		if r.Meta.Enchantments != nil {
			meta.Enchantments = make(map[string]int, len(r.Meta.Enchantments))
			for k, v := range r.Meta.Enchantments {
				meta.Enchantments[k] = v
			}
		}
		if r.Meta.Damage != nil {
			d := *r.Meta.Damage
			meta.Damage = &d
		}
		if r.Meta.CustomModelData != nil {
			c := *r.Meta.CustomModelData
			meta.CustomModelData = &c
		}
		if r.Meta.Container != nil {
			items := make(map[string]*ItemRecord, len(r.Meta.Container.Items))
			for k, v := range r.Meta.Container.Items {
				items[k] = v.Clone()
			}
			meta.Container = &Container{Size: r.Meta.Container.Size, Items: items}
		}
		out.Meta = &meta
	}
	return &out
}
