package payload

import (
	"encoding/json"
	"fmt"
	"strconv"

	"inventory-bridge/core/compat"

	"go.uber.org/zap"
)

// maxContainerDepth bounds recursive container-in-container decoding. The
// wire format itself declares no limit, so the decoder enforces one to keep
// worst-case payload cost bounded.
const maxContainerDepth = 8

// Source yields the items of a live inventory for encoding.
type Source interface {
	Size() int
	// Item returns the record at slot, or false when the slot is empty.
	Item(slot int) (*ItemRecord, bool)
}

// Sink receives decoded items. SetItem is only called for slots strictly
// below Size.
type Sink interface {
	Size() int
	SetItem(slot int, item *ItemRecord) error
}

// Registry answers whether an item identifier exists on this runtime. A nil
// Registry accepts every identifier.
type Registry interface {
	Exists(id string) bool
}

// envelope is the top-level inventory payload shape.
type envelope struct {
	Size             int                        `json:"size"`
	MinecraftVersion string                     `json:"minecraft_version"`
	DataVersion      int                        `json:"data_version"`
	Items            map[string]json.RawMessage `json:"items"`
}

// Codec converts inventories and item records to and from the versioned JSON
// payload stored in the inventories table.
type Codec struct {
	mappings    *compat.Mappings
	version     string
	dataVersion int
	registry    Registry
	logger      *zap.Logger
}

// NewCodec builds a codec stamping payloads with the given runtime version
// and data version. registry may be nil.
func NewCodec(mappings *compat.Mappings, version string, dataVersion int, registry Registry, logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{
		mappings:    mappings,
		version:     version,
		dataVersion: dataVersion,
		registry:    registry,
		logger:      logger,
	}
}

// Version returns the game version the codec stamps into payloads.
func (c *Codec) Version() string { return c.version }

// DataVersion returns the numeric data version the codec stamps into payloads.
func (c *Codec) DataVersion() int { return c.dataVersion }

// EncodeInventory serializes every non-empty slot of src. Empty slots are
// omitted entirely; an all-empty inventory encodes to an empty items object.
func (c *Codec) EncodeInventory(src Source) (string, error) {
	items := make(map[int]*ItemRecord)
	for slot := 0; slot < src.Size(); slot++ {
		if item, ok := src.Item(slot); ok && item != nil {
			items[slot] = item
		}
	}
	return c.EncodeItems(src.Size(), items)
}

// EncodeItems serializes an explicit slot->item map. Used directly by the
// offline bootstrap path, which has no live inventory to walk.
func (c *Codec) EncodeItems(size int, items map[int]*ItemRecord) (string, error) {
	env := envelope{
		Size:             size,
		MinecraftVersion: c.version,
		DataVersion:      c.dataVersion,
		Items:            make(map[string]json.RawMessage, len(items)),
	}
	for slot, item := range items {
		rec := item.Clone()
		rec.MinecraftVersion = c.version
		rec.DataVersion = c.dataVersion
		raw, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("encode item at slot %d: %w", slot, err)
		}
		env.Items[strconv.Itoa(slot)] = raw
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode inventory: %w", err)
	}
	return string(out), nil
}

// DecodeInventory parses data and pushes every usable slot into sink.
// Malformed top-level JSON is a hard error. Per-slot problems (non-numeric
// key, out-of-range index, unresolvable item) are skipped.
func (c *Codec) DecodeInventory(data string, sink Sink) error {
	if data == "" {
		return nil
	}
	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return fmt.Errorf("decode inventory: %w", err)
	}
	for key, raw := range env.Items {
		slot, err := strconv.Atoi(key)
		if err != nil {
			c.logger.Warn("Skipping non-numeric slot key", zap.String("key", key))
			continue
		}
		if slot < 0 || slot >= sink.Size() {
			continue
		}
		item, err := c.decodeRaw(raw, 0)
		if err != nil {
			c.logger.Warn("Skipping undecodable item",
				zap.Int("slot", slot), zap.Error(err))
			continue
		}
		if item == nil {
			continue
		}
		if err := sink.SetItem(slot, item); err != nil {
			c.logger.Warn("Sink rejected item",
				zap.Int("slot", slot), zap.Error(err))
		}
	}
	return nil
}

// DecodeItem parses a single serialized item record, applying the same
// compatibility substitution as inventory decoding. A nil record with nil
// error means the item was dropped as unresolvable.
func (c *Codec) DecodeItem(data string) (*ItemRecord, error) {
	return c.decodeRaw(json.RawMessage(data), 0)
}

// decodeRaw accepts both value shapes: a native JSON object (current format)
// and a JSON string wrapping the same object (legacy format).
func (c *Codec) decodeRaw(raw json.RawMessage, depth int) (*ItemRecord, error) {
	body := raw
	if len(raw) > 0 && raw[0] == '"' {
		var legacy string
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("unwrap legacy item: %w", err)
		}
		body = json.RawMessage(legacy)
	}
	var rec ItemRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return c.materialise(&rec, depth)
}

// materialise applies version-compatibility substitution and resolves
// container contents recursively.
func (c *Codec) materialise(rec *ItemRecord, depth int) (*ItemRecord, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("item record missing id")
	}
	if !c.mappings.IsAvailable(rec.ID, c.version) {
		fallback := c.mappings.Resolve(rec.ID)
		if fallback == rec.ID {
			c.logger.Warn("Dropping item with no compatible fallback",
				zap.String("id", rec.ID), zap.String("version", c.version))
			return nil, nil
		}
		c.logger.Info("Converted item for version compatibility",
			zap.String("from", rec.ID), zap.String("to", fallback))
		rec.ID = fallback
	}
	if c.registry != nil && !c.registry.Exists(rec.ID) {
		c.logger.Warn("Dropping unknown item",
			zap.String("id", rec.ID),
			zap.String("source_version", rec.MinecraftVersion))
		return nil, nil
	}
	if rec.Count <= 0 {
		rec.Count = 1
	}
	if rec.Meta != nil && rec.Meta.Container != nil {
		rec.Meta.Container = c.materialiseContainer(rec.Meta.Container, depth+1)
	}
	return rec, nil
}

func (c *Codec) materialiseContainer(container *Container, depth int) *Container {
	if depth > maxContainerDepth {
		c.logger.Warn("Container nesting exceeds depth limit, contents dropped",
			zap.Int("depth", depth))
		return nil
	}
	out := &Container{Size: container.Size, Items: make(map[string]*ItemRecord, len(container.Items))}
	for key, item := range container.Items {
		slot, err := strconv.Atoi(key)
		if err != nil || slot < 0 || slot >= container.Size {
			continue
		}
		resolved, err := c.materialise(item, depth)
		if err != nil || resolved == nil {
			continue
		}
		out.Items[key] = resolved
	}
	return out
}
