package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/database"
	"inventory-bridge/core/nbt"
	"inventory-bridge/core/payload"
)

// ScanReport summarises one pass over the playerdata directory.
type ScanReport struct {
	Scanned int `json:"scanned"`
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ScanPlayerFiles walks <world>/playerdata and creates a snapshot row for
// every player file that has none for this server yet. Connected players are
// serialized live; offline players are recovered from their save file. The
// pass is idempotent and safe to re-run: players with an existing row are
// skipped, and a player whose file fails to decode is left unsynced so a
// later pass can retry.
func (s *Service) ScanPlayerFiles() (ScanReport, error) {
	dir := filepath.Join(s.cfg.WorldPath, "playerdata")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ScanReport{}, fmt.Errorf("read playerdata directory: %w", err)
	}

	var report ScanReport
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dat") {
			continue
		}
		report.Scanned++

		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".dat"))
		if err != nil {
			s.logger.Warn("Skipping player file with unparseable name",
				zap.String("file", entry.Name()))
			report.Skipped++
			continue
		}

		has, err := s.repo.HasSnapshot(id, s.cfg.ServerID)
		if err != nil {
			// Standby or store failure: abort instead of logging one
			// FAILED row per remaining file.
			return report, fmt.Errorf("check existing snapshot: %w", err)
		}
		if has {
			report.Skipped++
			continue
		}

		s.scanOne(id, filepath.Join(dir, entry.Name()), &report)
	}

	s.logger.Info("Player file scan finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("synced", report.Synced),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// scanOne bootstraps a single player under the per-player guard.
func (s *Service) scanOne(id uuid.UUID, path string, report *ScanReport) {
	if !s.begin(id) {
		report.Skipped++
		return
	}
	defer s.finish(id)

	var err error
	if p, ok := s.players.Player(id); ok {
		err = s.saveSnapshot(p)
	} else {
		err = s.bootstrapFromFile(path, id)
	}
	if err != nil {
		s.logger.Warn("Initial sync failed, player left unsynced",
			zap.String("player", id.String()), zap.Error(err))
		s.audit(id, database.SyncKindInitialSync, database.SyncStatusFailed, err.Error())
		report.Failed++
		return
	}
	s.audit(id, database.SyncKindInitialSync, database.SyncStatusSuccess, "")
	report.Synced++
}

// bootstrapFromFile recovers a snapshot from an offline player's save file.
// Only identifier and count survive per slot; full item metadata is restored
// the first time the player's live state is saved. A decode failure writes
// no row at all.
func (s *Service) bootstrapFromFile(path string, id uuid.UUID) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open player file: %w", err)
	}
	defer f.Close()

	root, err := nbt.ReadCompressed(f)
	if err != nil {
		return fmt.Errorf("decode player file: %w", err)
	}
	data := nbt.NewPlayerData(root)

	inventoryData, err := s.encodeOffline(data.Inventory(), adapter.MainInventorySize)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}

	rec := database.SnapshotRecord{
		PlayerUUID:       id,
		ServerID:         s.cfg.ServerID,
		InventoryData:    inventoryData,
		Experience:       data.ExperienceTotal(),
		ExperienceLevel:  data.ExperienceLevel(),
		Health:           data.Health(),
		Hunger:           data.FoodLevel(),
		MinecraftVersion: s.codec.Version(),
		DataVersion:      s.codec.DataVersion(),
	}
	if s.cfg.SyncEnderChest && data.HasEnderItems() {
		enderData, err := s.encodeOffline(data.EnderItems(), adapter.EnderChestSize)
		if err != nil {
			return fmt.Errorf("encode ender chest: %w", err)
		}
		rec.EnderChestData = &enderData
	}

	if err := s.repo.SaveSnapshot(rec); err != nil {
		return err
	}
	s.logger.Info("Bootstrapped snapshot from player file",
		zap.String("player", id.String()))
	s.archive(id, inventoryData)
	return nil
}

// encodeOffline converts decoded save-file item compounds into the wire
// format, dropping slots that are out of range or carry no identifier.
func (s *Service) encodeOffline(items []nbt.Compound, size int) (string, error) {
	records := make(map[int]*payload.ItemRecord, len(items))
	for _, item := range items {
		slot := nbt.ItemSlot(item)
		if slot < 0 || slot >= size {
			continue
		}
		id := nbt.ItemID(item)
		if id == "" {
			continue
		}
		records[slot] = &payload.ItemRecord{ID: id, Count: nbt.ItemCount(item)}
	}
	return s.codec.EncodeItems(size, records)
}
