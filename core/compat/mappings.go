package compat

import (
	"strconv"
	"strings"
)

// Mappings resolves item identifiers written by a newer game version into
// identifiers that exist on an older target version. The zero value is
// unusable; construct with NewMappings so the static table is seeded.
//
// The table only maps downward (new id -> broadly available fallback).
// Identifiers without an entry resolve to themselves.
type Mappings struct {
	table map[string]string
	rules []versionRule
}

// versionRule marks a family of identifiers as unavailable below a version
// floor. The predicate decides membership for a given identifier.
type versionRule struct {
	floor string
	match func(id string) bool
}

// NewMappings builds the mapper with the built-in fallback table and
// version-threshold rules. Persisted overrides can be layered on top with Put.
func NewMappings() *Mappings {
	m := &Mappings{table: make(map[string]string, 96)}

	// Bundles shipped in 1.21.2.
	m.table["minecraft:bundle"] = "minecraft:leather"

	// Resin items (1.21.4+).
	m.table["minecraft:resin_clump"] = "minecraft:slime_ball"
	m.table["minecraft:resin_brick"] = "minecraft:brick"

	// Copper bulbs.
	m.table["minecraft:copper_bulb"] = "minecraft:copper_block"
	m.table["minecraft:exposed_copper_bulb"] = "minecraft:exposed_copper"
	m.table["minecraft:weathered_copper_bulb"] = "minecraft:weathered_copper"
	m.table["minecraft:oxidized_copper_bulb"] = "minecraft:oxidized_copper"
	m.table["minecraft:waxed_copper_bulb"] = "minecraft:waxed_copper_block"
	m.table["minecraft:waxed_exposed_copper_bulb"] = "minecraft:waxed_exposed_copper"
	m.table["minecraft:waxed_weathered_copper_bulb"] = "minecraft:waxed_weathered_copper"
	m.table["minecraft:waxed_oxidized_copper_bulb"] = "minecraft:waxed_oxidized_copper"

	// Copper doors and trapdoors.
	m.table["minecraft:copper_door"] = "minecraft:iron_door"
	m.table["minecraft:exposed_copper_door"] = "minecraft:iron_door"
	m.table["minecraft:weathered_copper_door"] = "minecraft:iron_door"
	m.table["minecraft:oxidized_copper_door"] = "minecraft:iron_door"
	m.table["minecraft:copper_trapdoor"] = "minecraft:iron_trapdoor"
	m.table["minecraft:exposed_copper_trapdoor"] = "minecraft:iron_trapdoor"
	m.table["minecraft:weathered_copper_trapdoor"] = "minecraft:iron_trapdoor"
	m.table["minecraft:oxidized_copper_trapdoor"] = "minecraft:iron_trapdoor"

	// Copper grates.
	m.table["minecraft:copper_grate"] = "minecraft:copper_block"
	m.table["minecraft:exposed_copper_grate"] = "minecraft:exposed_copper"
	m.table["minecraft:weathered_copper_grate"] = "minecraft:weathered_copper"
	m.table["minecraft:oxidized_copper_grate"] = "minecraft:oxidized_copper"

	// Trial chamber items.
	m.table["minecraft:trial_key"] = "minecraft:gold_ingot"
	m.table["minecraft:ominous_trial_key"] = "minecraft:gold_ingot"
	m.table["minecraft:ominous_bottle"] = "minecraft:glass_bottle"
	m.table["minecraft:wind_charge"] = "minecraft:snowball"

	m.table["minecraft:crafter"] = "minecraft:crafting_table"

	// Pale oak family (1.21.4+).
	for _, suffix := range []string{
		"log", "wood", "planks", "stairs", "slab", "fence", "fence_gate",
		"door", "trapdoor", "button", "pressure_plate", "sign", "hanging_sign",
		"boat", "chest_boat", "sapling", "leaves",
	} {
		m.table["minecraft:pale_oak_"+suffix] = "minecraft:oak_" + suffix
	}

	m.table["minecraft:creaking_heart"] = "minecraft:oak_log"
	m.table["minecraft:creaking_spawn_egg"] = "minecraft:zombie_spawn_egg"

	// 1.21.6 additions.
	m.table["minecraft:dried_ghast"] = "minecraft:soul_sand"
	for _, color := range []string{
		"white", "orange", "magenta", "light_blue", "yellow", "lime", "pink",
		"gray", "light_gray", "cyan", "purple", "blue", "brown", "green",
		"red", "black",
	} {
		m.table["minecraft:"+color+"_harness"] = "minecraft:leather"
	}
	m.table["minecraft:music_disc_tears"] = "minecraft:music_disc_13"

	// 1.21.7 additions.
	m.table["minecraft:music_disc_lava_chicken"] = "minecraft:music_disc_13"

	m.rules = []versionRule{
		{floor: "1.21.2", match: func(id string) bool {
			return strings.Contains(id, "bundle")
		}},
		{floor: "1.21.4", match: func(id string) bool {
			return strings.Contains(id, "resin") ||
				strings.Contains(id, "pale_oak") ||
				strings.Contains(id, "creaking")
		}},
		{floor: "1.21.6", match: func(id string) bool {
			return strings.Contains(id, "dried_ghast") ||
				strings.Contains(id, "harness") ||
				id == "minecraft:music_disc_tears"
		}},
		{floor: "1.21.7", match: func(id string) bool {
			return id == "minecraft:music_disc_lava_chicken"
		}},
	}

	return m
}

// Put installs or replaces a single mapping. Used to layer persisted
// version_mappings rows over the static table at startup.
func (m *Mappings) Put(from, to string) {
	m.table[from] = to
}

// Resolve returns the fallback identifier for id, or id itself when no
// mapping exists.
func (m *Mappings) Resolve(id string) string {
	if to, ok := m.table[id]; ok {
		return to
	}
	return id
}

// IsAvailable reports whether id exists on the given game version.
func (m *Mappings) IsAvailable(id, version string) bool {
	for _, rule := range m.rules {
		if rule.match(id) && versionOlderThan(version, rule.floor) {
			return false
		}
	}
	return true
}

// NeedsConversion reports whether id must be resolved before it can be
// materialised on targetVersion. Identifiers with a table entry always
// report true, matching the original behaviour.
func (m *Mappings) NeedsConversion(id, targetVersion string) bool {
	for _, rule := range m.rules {
		if rule.match(id) && versionOlderThan(targetVersion, rule.floor) {
			return true
		}
	}
	_, mapped := m.table[id]
	return mapped
}

// versionOlderThan reports whether version sorts before floor. Versions are
// "major.minor.patch" strings, compared component by component; a missing
// patch reads as zero, so "1.20" sorts like "1.20.0". Malformed input fails
// open: the version is treated as not older.
func versionOlderThan(version, floor string) bool {
	a, okA := parseVersion(version)
	b, okB := parseVersion(floor)
	if !okA || !okB {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func parseVersion(version string) ([3]int, bool) {
	var out [3]int
	parts := strings.Split(version, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return out, false
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
