package compat

// Config holds the version-compatibility settings for this server.
type Config struct {
	// MinecraftVersion is the game version this server runs.
	MinecraftVersion string `mapstructure:"minecraftversion" default:"1.21.8"`
	// DataVersion is the numeric data-schema generation matching the
	// game version. Stamped into every payload this server writes.
	DataVersion int `mapstructure:"dataversion" default:"4082"`
}
