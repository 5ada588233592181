package archive

// Config holds configuration for the snapshot archive feature.
type Config struct {
	// Enabled turns snapshot archiving on. The storage endpoint itself is
	// configured in the storage section.
	Enabled bool `mapstructure:"enabled" default:"false"`
}
