package database

import (
	"fmt"

	"gorm.io/gorm"
)

// createSchema idempotently creates the three schema objects the bridge
// owns. The DDL matches the long-lived production layout; columns are never
// altered here.
func createSchema(db *gorm.DB, prefix string) error {
	inventories := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%sinventories` ("+
		"`id` INT AUTO_INCREMENT PRIMARY KEY, "+
		"`player_uuid` VARCHAR(36) NOT NULL, "+
		"`server_id` VARCHAR(64) NOT NULL, "+
		"`inventory_data` LONGTEXT NOT NULL, "+
		"`ender_chest_data` LONGTEXT, "+
		"`experience` INT DEFAULT 0, "+
		"`experience_level` INT DEFAULT 0, "+
		"`health` FLOAT DEFAULT 20.0, "+
		"`hunger` INT DEFAULT 20, "+
		"`minecraft_version` VARCHAR(16) NOT NULL, "+
		"`data_version` INT NOT NULL, "+
		"`last_updated` TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP, "+
		"UNIQUE KEY `unique_player_server` (`player_uuid`, `server_id`), "+
		"INDEX `idx_player_uuid` (`player_uuid`), "+
		"INDEX `idx_last_updated` (`last_updated`)"+
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci", prefix)

	// sync_type is a VARCHAR rather than an ENUM so INITIAL_SYNC rows from
	// the player-file scan are not silently rejected.
	syncLog := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%ssync_log` ("+
		"`id` INT AUTO_INCREMENT PRIMARY KEY, "+
		"`player_uuid` VARCHAR(36) NOT NULL, "+
		"`server_id` VARCHAR(64) NOT NULL, "+
		"`sync_type` VARCHAR(16) NOT NULL, "+
		"`status` ENUM('SUCCESS', 'FAILED', 'PARTIAL') NOT NULL, "+
		"`error_message` TEXT, "+
		"`sync_time` TIMESTAMP DEFAULT CURRENT_TIMESTAMP, "+
		"INDEX `idx_player_uuid` (`player_uuid`), "+
		"INDEX `idx_sync_time` (`sync_time`)"+
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci", prefix)

	versionMappings := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%sversion_mappings` ("+
		"`id` INT AUTO_INCREMENT PRIMARY KEY, "+
		"`from_version` VARCHAR(16) NOT NULL, "+
		"`to_version` VARCHAR(16) NOT NULL, "+
		"`item_id` VARCHAR(128) NOT NULL, "+
		"`mapping_data` TEXT, "+
		"`created_at` TIMESTAMP DEFAULT CURRENT_TIMESTAMP, "+
		"UNIQUE KEY `unique_mapping` (`from_version`, `to_version`, `item_id`)"+
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci", prefix)

	for _, ddl := range []string{inventories, syncLog, versionMappings} {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("create schema object: %w", err)
		}
	}
	return nil
}
