package sync

// Config holds configuration for the sync service.
type Config struct {
	// ServerID identifies this server in the shared datastore. Every
	// snapshot and audit row this process writes carries it.
	ServerID string `mapstructure:"serverid" default:"server1"`
	// SyncOnJoin loads the authoritative snapshot when a player connects.
	SyncOnJoin bool `mapstructure:"synconjoin" default:"true"`
	// SyncOnLeave saves the live state when a player disconnects.
	SyncOnLeave bool `mapstructure:"synconleave" default:"true"`
	// SyncEnderChest includes the ender chest in saves and loads.
	SyncEnderChest bool `mapstructure:"syncenderchest" default:"true"`
	// SyncExperience includes total experience and level.
	SyncExperience bool `mapstructure:"syncexperience" default:"true"`
	// SyncHealth includes health. Off by default; applying stale health
	// across servers is usually unwanted.
	SyncHealth bool `mapstructure:"synchealth" default:"false"`
	// SyncHunger includes the hunger level.
	SyncHunger bool `mapstructure:"synchunger" default:"false"`
	// WorldPath is the world directory whose playerdata folder the
	// initial-sync scan reads.
	WorldPath string `mapstructure:"worldpath" default:"world"`
}
