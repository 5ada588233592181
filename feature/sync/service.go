package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/database"
	"inventory-bridge/core/payload"
)

var (
	// ErrSyncBusy is returned when a sync is already in flight for the player.
	ErrSyncBusy = errors.New("sync already in progress for this player")
	// ErrPlayerNotFound is returned when the player is not resident here.
	ErrPlayerNotFound = errors.New("player is not connected to this server")
)

// Archiver receives a copy of every successfully saved inventory payload.
// Implementations must not fail the sync; archive problems are their own.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, player uuid.UUID, serverID, data string)
}

// Service orchestrates per-player synchronization between live state and the
// shared datastore. It guarantees at most one in-flight sync per player via
// an atomic per-key guard; unrelated players sync concurrently.
type Service struct {
	cfg      Config
	repo     *database.Repository
	codec    *payload.Codec
	players  adapter.Provider
	archiver Archiver
	logger   *zap.Logger

	inProgress sync.Map // uuid.UUID -> struct{}
	lastSync   sync.Map // uuid.UUID -> time.Time

	// dispatch runs a sync attempt off the caller's thread. Tests replace
	// it to run attempts synchronously.
	dispatch func(task func())
}

// NewService creates the sync orchestrator. archiver may be nil.
func NewService(cfg Config, repo *database.Repository, codec *payload.Codec, players adapter.Provider, archiver Archiver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:      cfg,
		repo:     repo,
		codec:    codec,
		players:  players,
		archiver: archiver,
		logger:   logger,
	}
	s.dispatch = func(task func()) { go task() }
	return s
}

// OnJoin asynchronously loads the authoritative snapshot into the player.
// No-op when sync-on-join is disabled or a sync is already in flight. Never
// returns an error; failures become FAILED audit rows.
func (s *Service) OnJoin(p adapter.Player) {
	if !s.cfg.SyncOnJoin {
		return
	}
	if !s.begin(p.UUID()) {
		s.logger.Debug("Sync already in progress, join sync skipped",
			zap.String("player", p.UUID().String()))
		return
	}
	s.dispatch(func() { s.attempt(p, database.SyncKindJoin, s.applySnapshot) })
}

// OnLeave asynchronously saves the player's live state. Gating mirrors
// OnJoin with the sync-on-leave flag.
func (s *Service) OnLeave(p adapter.Player) {
	if !s.cfg.SyncOnLeave {
		return
	}
	if !s.begin(p.UUID()) {
		s.logger.Debug("Sync already in progress, leave sync skipped",
			zap.String("player", p.UUID().String()))
		return
	}
	s.dispatch(func() { s.attempt(p, database.SyncKindLeave, s.saveSnapshot) })
}

// ManualSync starts an operator-requested save or load for a connected
// player. Reports busy instead of queueing a second attempt.
func (s *Service) ManualSync(id uuid.UUID, save bool) error {
	p, ok := s.players.Player(id)
	if !ok {
		return ErrPlayerNotFound
	}
	if !s.begin(id) {
		return ErrSyncBusy
	}
	op := s.applySnapshot
	if save {
		op = s.saveSnapshot
	}
	s.dispatch(func() { s.attempt(p, database.SyncKindManual, op) })
	return nil
}

// IsSyncInProgress reports whether a sync is currently in flight.
func (s *Service) IsSyncInProgress(id uuid.UUID) bool {
	_, ok := s.inProgress.Load(id)
	return ok
}

// LastSyncTime returns when the player's last sync attempt finished.
func (s *Service) LastSyncTime(id uuid.UUID) (time.Time, bool) {
	v, ok := s.lastSync.Load(id)
	if !ok {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

// begin atomically claims the per-player guard. Exactly one caller wins
// until finish releases it.
func (s *Service) begin(id uuid.UUID) bool {
	_, loaded := s.inProgress.LoadOrStore(id, struct{}{})
	return !loaded
}

func (s *Service) finish(id uuid.UUID) {
	s.inProgress.Delete(id)
	s.lastSync.Store(id, time.Now())
}

// attempt runs one sync operation, converts any failure into a FAILED audit
// row and always releases the guard. Nothing propagates to the dispatcher.
func (s *Service) attempt(p adapter.Player, kind string, op func(adapter.Player) error) {
	id := p.UUID()
	defer s.finish(id)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sync attempt panicked",
				zap.String("player", id.String()),
				zap.String("kind", kind),
				zap.Any("panic", r))
			s.audit(id, kind, database.SyncStatusFailed, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := op(p); err != nil {
		if kind == database.SyncKindLeave || kind == database.SyncKindManual {
			// A lost save is silent data loss for the player.
			s.logger.Error("Sync save failed, live state not persisted",
				zap.String("player", id.String()),
				zap.String("kind", kind),
				zap.Error(err))
		} else {
			s.logger.Warn("Sync failed",
				zap.String("player", id.String()),
				zap.String("kind", kind),
				zap.Error(err))
		}
		s.audit(id, kind, database.SyncStatusFailed, err.Error())
		return
	}
	s.audit(id, kind, database.SyncStatusSuccess, "")
}

// audit best-effort writes one sync_log row. In standby the insert itself
// fails; that is logged and swallowed so the attempt still completes.
func (s *Service) audit(id uuid.UUID, kind, status, detail string) {
	if err := s.repo.LogSync(id, s.cfg.ServerID, kind, status, detail); err != nil {
		s.logger.Warn("Could not write sync audit entry",
			zap.String("player", id.String()),
			zap.String("kind", kind),
			zap.String("status", status),
			zap.Error(err))
	}
}

// saveSnapshot serializes the player's live state and upserts it under this
// server's id.
func (s *Service) saveSnapshot(p adapter.Player) error {
	inventoryData, err := s.codec.EncodeInventory(p.Inventory())
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}

	rec := database.SnapshotRecord{
		PlayerUUID:       p.UUID(),
		ServerID:         s.cfg.ServerID,
		InventoryData:    inventoryData,
		Experience:       p.TotalExperience(),
		ExperienceLevel:  p.Level(),
		Health:           p.Health(),
		Hunger:           p.FoodLevel(),
		MinecraftVersion: s.codec.Version(),
		DataVersion:      s.codec.DataVersion(),
	}
	if s.cfg.SyncEnderChest {
		enderData, err := s.codec.EncodeInventory(p.EnderChest())
		if err != nil {
			return fmt.Errorf("encode ender chest: %w", err)
		}
		rec.EnderChestData = &enderData
	}

	if err := s.repo.SaveSnapshot(rec); err != nil {
		return err
	}
	s.logger.Info("Saved inventory snapshot",
		zap.String("player", p.UUID().String()),
		zap.String("server", s.cfg.ServerID))
	s.archive(p.UUID(), inventoryData)
	return nil
}

// applySnapshot loads the authoritative snapshot and applies it to the live
// player. A missing snapshot is a clean no-op, not an error.
func (s *Service) applySnapshot(p adapter.Player) error {
	rec, err := s.repo.LoadSnapshot(p.UUID(), s.cfg.ServerID)
	if err != nil {
		return err
	}
	if rec == nil {
		s.logger.Debug("No snapshot found, player state untouched",
			zap.String("player", p.UUID().String()))
		return nil
	}

	inv := p.Inventory()
	inv.Clear()
	if err := s.codec.DecodeInventory(rec.InventoryData, inv); err != nil {
		return fmt.Errorf("decode inventory: %w", err)
	}

	if s.cfg.SyncEnderChest && rec.EnderChestData != nil {
		ec := p.EnderChest()
		ec.Clear()
		if err := s.codec.DecodeInventory(*rec.EnderChestData, ec); err != nil {
			return fmt.Errorf("decode ender chest: %w", err)
		}
	}
	if s.cfg.SyncExperience {
		p.SetExperience(rec.Experience, rec.ExperienceLevel)
	}
	if s.cfg.SyncHealth {
		p.SetHealth(rec.Health)
	}
	if s.cfg.SyncHunger {
		p.SetFoodLevel(rec.Hunger)
	}
	s.logger.Info("Applied inventory snapshot",
		zap.String("player", p.UUID().String()),
		zap.String("source_server", rec.ServerID))
	return nil
}

func (s *Service) archive(id uuid.UUID, data string) {
	if s.archiver == nil {
		return
	}
	s.archiver.ArchiveSnapshot(context.Background(), id, s.cfg.ServerID, data)
}
