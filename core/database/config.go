package database

// Config holds configuration for the shared MySQL datastore.
type Config struct {
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// Database is the database name.
	Database string `mapstructure:"database" default:"inventory_bridge"`
	// Username is the database user.
	Username string `mapstructure:"username" default:"minecraft"`
	// Password is the database password.
	Password string `mapstructure:"password" default:"password"`
	// TablePrefix is prepended to every schema object this service creates.
	TablePrefix string `mapstructure:"tableprefix" default:"ib_"`
	// MaxPoolSize caps the number of open connections in the pool.
	MaxPoolSize int `mapstructure:"maxpoolsize" default:"10"`
	// ConnectionTimeout is the connection setup timeout in milliseconds.
	ConnectionTimeout int `mapstructure:"connectiontimeout" default:"30000"`
	// UseSSL enables TLS on the database connection.
	UseSSL bool `mapstructure:"usessl" default:"false"`
}
