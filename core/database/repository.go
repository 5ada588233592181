package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotRecord is one row of the inventories table: the last-known-good
// state one server saved for one player.
type SnapshotRecord struct {
	PlayerUUID       uuid.UUID
	ServerID         string
	InventoryData    string
	EnderChestData   *string
	Experience       int
	ExperienceLevel  int
	Health           float64
	Hunger           int
	MinecraftVersion string
	DataVersion      int
	LastUpdated      time.Time
}

// Sync audit kinds written to the sync_log table.
const (
	SyncKindJoin        = "JOIN"
	SyncKindLeave       = "LEAVE"
	SyncKindManual      = "MANUAL"
	SyncKindAuto        = "AUTO"
	SyncKindInitialSync = "INITIAL_SYNC"
)

// Sync audit outcomes.
const (
	SyncStatusSuccess = "SUCCESS"
	SyncStatusFailed  = "FAILED"
	SyncStatusPartial = "PARTIAL"
)

// VersionOverride is a persisted compatibility mapping that supersedes the
// static table for one identifier.
type VersionOverride struct {
	FromVersion string
	ToVersion   string
	ItemID      string
	MappedID    string
}

// Repository runs the snapshot and audit SQL against the manager's pool.
// Every method fails fast with ErrStandby while the manager is degraded.
type Repository struct {
	manager *Manager
	logger  *zap.Logger
}

// NewRepository creates a repository over the given connection manager.
func NewRepository(manager *Manager, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{manager: manager, logger: log}
}

func (r *Repository) table(name string) string {
	return fmt.Sprintf("`%s%s`", r.manager.TablePrefix(), name)
}

// HasSnapshot reports whether a row exists for (player, server).
func (r *Repository) HasSnapshot(player uuid.UUID, serverID string) (bool, error) {
	db, err := r.manager.DB()
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE `player_uuid` = ? AND `server_id` = ?",
		r.table("inventories"))
	var count int64
	if err := db.Raw(query, player.String(), serverID).Scan(&count).Error; err != nil {
		return false, fmt.Errorf("check snapshot row: %w", err)
	}
	return count > 0, nil
}

// SaveSnapshot upserts the (player, server) row. last_updated advances on
// every write through the store's own ON UPDATE clause.
func (r *Repository) SaveSnapshot(rec SnapshotRecord) error {
	db, err := r.manager.DB()
	if err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s "+
		"(`player_uuid`, `server_id`, `inventory_data`, `ender_chest_data`, "+
		"`experience`, `experience_level`, `health`, `hunger`, `minecraft_version`, `data_version`) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) "+
		"ON DUPLICATE KEY UPDATE "+
		"`inventory_data` = VALUES(`inventory_data`), "+
		"`ender_chest_data` = VALUES(`ender_chest_data`), "+
		"`experience` = VALUES(`experience`), "+
		"`experience_level` = VALUES(`experience_level`), "+
		"`health` = VALUES(`health`), "+
		"`hunger` = VALUES(`hunger`), "+
		"`minecraft_version` = VALUES(`minecraft_version`), "+
		"`data_version` = VALUES(`data_version`)",
		r.table("inventories"))

	err = db.Exec(query,
		rec.PlayerUUID.String(), rec.ServerID, rec.InventoryData, rec.EnderChestData,
		rec.Experience, rec.ExperienceLevel, rec.Health, rec.Hunger,
		rec.MinecraftVersion, rec.DataVersion,
	).Error
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

const snapshotColumns = "`inventory_data`, `ender_chest_data`, `experience`, `experience_level`, " +
	"`health`, `hunger`, `minecraft_version`, `data_version`, `last_updated`"

// LoadSnapshot returns the authoritative snapshot for the player, or nil
// when none exists anywhere. The server's own row wins when present;
// otherwise the most recently updated row across all servers is taken
// (last-writer-wins).
func (r *Repository) LoadSnapshot(player uuid.UUID, serverID string) (*SnapshotRecord, error) {
	db, err := r.manager.DB()
	if err != nil {
		return nil, err
	}

	own := fmt.Sprintf("SELECT %s FROM %s WHERE `player_uuid` = ? AND `server_id` = ?",
		snapshotColumns, r.table("inventories"))
	rec, err := r.scanSnapshot(db.Raw(own, player.String(), serverID).Row(), player, serverID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	cross := fmt.Sprintf("SELECT %s, `server_id` FROM %s WHERE `player_uuid` = ? "+
		"ORDER BY `last_updated` DESC LIMIT 1",
		snapshotColumns, r.table("inventories"))
	row := db.Raw(cross, player.String()).Row()

	var (
		ender          sql.NullString
		sourceServerID string
		out            = SnapshotRecord{PlayerUUID: player}
	)
	err = row.Scan(&out.InventoryData, &ender, &out.Experience, &out.ExperienceLevel,
		&out.Health, &out.Hunger, &out.MinecraftVersion, &out.DataVersion,
		&out.LastUpdated, &sourceServerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cross-server snapshot: %w", err)
	}
	if ender.Valid {
		out.EnderChestData = &ender.String
	}
	out.ServerID = sourceServerID
	r.logger.Info("Loaded snapshot from another server",
		zap.String("player", player.String()),
		zap.String("source_server", sourceServerID),
		zap.String("this_server", serverID))
	return &out, nil
}

func (r *Repository) scanSnapshot(row *sql.Row, player uuid.UUID, serverID string) (*SnapshotRecord, error) {
	var (
		ender sql.NullString
		out   = SnapshotRecord{PlayerUUID: player, ServerID: serverID}
	)
	err := row.Scan(&out.InventoryData, &ender, &out.Experience, &out.ExperienceLevel,
		&out.Health, &out.Hunger, &out.MinecraftVersion, &out.DataVersion, &out.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if ender.Valid {
		out.EnderChestData = &ender.String
	}
	return &out, nil
}

// LogSync appends one audit row. Audit rows are never mutated or deleted.
func (r *Repository) LogSync(player uuid.UUID, serverID, kind, status, errorMessage string) error {
	db, err := r.manager.DB()
	if err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s (`player_uuid`, `server_id`, `sync_type`, `status`, `error_message`) "+
		"VALUES (?, ?, ?, ?, ?)", r.table("sync_log"))

	var msg *string
	if errorMessage != "" {
		msg = &errorMessage
	}
	if err := db.Exec(query, player.String(), serverID, kind, status, msg).Error; err != nil {
		return fmt.Errorf("log sync: %w", err)
	}
	return nil
}

// VersionOverrides loads every persisted compatibility override, newest
// first so later rows win when layered onto the static table in order.
func (r *Repository) VersionOverrides() ([]VersionOverride, error) {
	db, err := r.manager.DB()
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT `from_version`, `to_version`, `item_id`, `mapping_data` FROM %s "+
		"ORDER BY `created_at` ASC", r.table("version_mappings"))
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("load version overrides: %w", err)
	}
	defer rows.Close()

	var out []VersionOverride
	for rows.Next() {
		var (
			o      VersionOverride
			mapped sql.NullString
		)
		if err := rows.Scan(&o.FromVersion, &o.ToVersion, &o.ItemID, &mapped); err != nil {
			return nil, fmt.Errorf("scan version override: %w", err)
		}
		o.MappedID = mapped.String
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveVersionOverride persists one compatibility override.
func (r *Repository) SaveVersionOverride(o VersionOverride) error {
	db, err := r.manager.DB()
	if err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s (`from_version`, `to_version`, `item_id`, `mapping_data`) "+
		"VALUES (?, ?, ?, ?) ON DUPLICATE KEY UPDATE `mapping_data` = VALUES(`mapping_data`)",
		r.table("version_mappings"))
	if err := db.Exec(query, o.FromVersion, o.ToVersion, o.ItemID, o.MappedID).Error; err != nil {
		return fmt.Errorf("save version override: %w", err)
	}
	return nil
}
