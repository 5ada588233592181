// Package config provides configuration management for the Inventory Bridge.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP admin server settings (port, API key)
//   - Database: MySQL connection details and table prefix
//   - Log: Logging level and format
//   - Sync: server identity and per-field sync flags
//   - Compatibility: game version and data version
//   - Storage / Archive: S3/MinIO credentials and the archive toggle
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.ServerID)
package config
