package sync

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/compat"
	"inventory-bridge/core/database"
	"inventory-bridge/core/payload"
)

func defaultConfig() Config {
	return Config{
		ServerID:       "lobby",
		SyncOnJoin:     true,
		SyncOnLeave:    true,
		SyncEnderChest: true,
		SyncExperience: true,
	}
}

var snapshotCols = []string{
	"inventory_data", "ender_chest_data", "experience", "experience_level",
	"health", "hunger", "minecraft_version", "data_version", "last_updated",
}

// newTestService wires the service over a mocked datastore with synchronous
// dispatch so assertions can run right after the call returns.
func newTestService(t *testing.T, cfg Config) (*Service, sqlmock.Sqlmock, *adapter.MemoryProvider) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	manager := database.NewManagerWithConnector(database.Config{TablePrefix: "ib_"}, nil,
		func(database.Config) (*gorm.DB, error) { return gormDB, nil })
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `ib_inventories`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `ib_sync_log`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `ib_version_mappings`").WillReturnResult(sqlmock.NewResult(0, 0))
	manager.Initialize()
	require.Equal(t, database.StateActive, manager.State())

	repo := database.NewRepository(manager, nil)
	codec := payload.NewCodec(compat.NewMappings(), "1.21.8", 4082, nil, nil)
	players := adapter.NewMemoryProvider()

	svc := NewService(cfg, repo, codec, players, nil, nil)
	svc.dispatch = func(task func()) { task() }
	return svc, mock, players
}

func TestService_OnLeaveSavesSnapshot(t *testing.T) {
	svc, mock, players := newTestService(t, defaultConfig())

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	require.NoError(t, p.Inventory().SetItem(0, &payload.ItemRecord{ID: "minecraft:stone", Count: 64}))
	p.SetExperience(1395, 27)
	players.Connect(p)

	mock.ExpectExec("INSERT INTO `ib_inventories`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `ib_sync_log`").
		WithArgs(p.UUID().String(), "lobby", database.SyncKindLeave, database.SyncStatusSuccess, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc.OnLeave(p)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.False(t, svc.IsSyncInProgress(p.UUID()))
	_, ok := svc.LastSyncTime(p.UUID())
	assert.True(t, ok)
}

func TestService_OnJoinAppliesSnapshot(t *testing.T) {
	svc, mock, players := newTestService(t, defaultConfig())

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	// Pre-existing junk that the load must clear.
	require.NoError(t, p.Inventory().SetItem(0, &payload.ItemRecord{ID: "minecraft:dirt", Count: 1}))
	players.Connect(p)

	inventoryJSON := `{"size":41,"minecraft_version":"1.21.8","data_version":4082,` +
		`"items":{"3":{"id":"minecraft:stone","count":64}}}`
	mock.ExpectQuery("SELECT (.+) AND `server_id` =").
		WithArgs(p.UUID().String(), "lobby").
		WillReturnRows(sqlmock.NewRows(snapshotCols).
			AddRow(inventoryJSON, nil, 500, 12, 5.0, 9, "1.21.8", 4082, time.Now()))
	mock.ExpectExec("INSERT INTO `ib_sync_log`").
		WithArgs(p.UUID().String(), "lobby", database.SyncKindJoin, database.SyncStatusSuccess, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc.OnJoin(p)

	assert.NoError(t, mock.ExpectationsWereMet())

	_, ok := p.Inventory().Item(0)
	assert.False(t, ok, "inventory must be cleared before applying")
	item, ok := p.Inventory().Item(3)
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", item.ID)
	assert.Equal(t, 64, item.Count)

	assert.Equal(t, 500, p.TotalExperience())
	assert.Equal(t, 12, p.Level())
	// Health and hunger flags are off in the default config.
	assert.Equal(t, 20.0, p.Health())
	assert.Equal(t, 20, p.FoodLevel())
}

func TestService_OnJoinWithoutSnapshotLeavesPlayerUntouched(t *testing.T) {
	svc, mock, players := newTestService(t, defaultConfig())

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	require.NoError(t, p.Inventory().SetItem(0, &payload.ItemRecord{ID: "minecraft:dirt", Count: 1}))
	players.Connect(p)

	mock.ExpectQuery("SELECT (.+) AND `server_id` =").
		WillReturnRows(sqlmock.NewRows(snapshotCols))
	mock.ExpectQuery("ORDER BY `last_updated` DESC").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, snapshotCols...), "server_id")))
	mock.ExpectExec("INSERT INTO `ib_sync_log`").
		WithArgs(p.UUID().String(), "lobby", database.SyncKindJoin, database.SyncStatusSuccess, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc.OnJoin(p)

	assert.NoError(t, mock.ExpectationsWereMet())
	item, ok := p.Inventory().Item(0)
	require.True(t, ok, "no snapshot must not clear the live inventory")
	assert.Equal(t, "minecraft:dirt", item.ID)
}

func TestService_GuardRejectsConcurrentSync(t *testing.T) {
	svc, mock, players := newTestService(t, defaultConfig())

	// Capture tasks instead of running them so the first attempt still
	// holds the guard when the second arrives.
	var tasks []func()
	svc.dispatch = func(task func()) { tasks = append(tasks, task) }

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	players.Connect(p)

	svc.OnLeave(p)
	svc.OnLeave(p)
	require.Len(t, tasks, 1, "second sync must be rejected, not queued")
	assert.True(t, svc.IsSyncInProgress(p.UUID()))

	mock.ExpectExec("INSERT INTO `ib_inventories`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `ib_sync_log`").WillReturnResult(sqlmock.NewResult(1, 1))
	tasks[0]()

	assert.NoError(t, mock.ExpectationsWereMet(), "exactly one persisted write for the pair")
	assert.False(t, svc.IsSyncInProgress(p.UUID()))
}

func TestService_StandbyProducesFailedAuditWithoutThrowing(t *testing.T) {
	manager := database.NewManager(database.Config{TablePrefix: "ib_"}, nil)
	repo := database.NewRepository(manager, nil)
	codec := payload.NewCodec(compat.NewMappings(), "1.21.8", 4082, nil, nil)
	players := adapter.NewMemoryProvider()

	svc := NewService(defaultConfig(), repo, codec, players, nil, nil)
	svc.dispatch = func(task func()) { task() }

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	players.Connect(p)

	// Both the save and the audit insert fail in standby; neither failure
	// may escape the event path.
	assert.NotPanics(t, func() { svc.OnLeave(p) })
	assert.False(t, svc.IsSyncInProgress(p.UUID()))
	_, ok := svc.LastSyncTime(p.UUID())
	assert.True(t, ok, "guard must clear and last-sync must advance on failure")
}

func TestService_ManualSync(t *testing.T) {
	svc, mock, players := newTestService(t, defaultConfig())

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	players.Connect(p)

	t.Run("UnknownPlayer", func(t *testing.T) {
		err := svc.ManualSync(uuid.New(), true)
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("Busy", func(t *testing.T) {
		require.True(t, svc.begin(p.UUID()))
		defer svc.finish(p.UUID())
		err := svc.ManualSync(p.UUID(), true)
		assert.ErrorIs(t, err, ErrSyncBusy)
	})

	t.Run("Save", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO `ib_inventories`").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO `ib_sync_log`").
			WithArgs(p.UUID().String(), "lobby", database.SyncKindManual, database.SyncStatusSuccess, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, svc.ManualSync(p.UUID(), true))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_DisabledFlagsSkipSync(t *testing.T) {
	cfg := defaultConfig()
	cfg.SyncOnJoin = false
	cfg.SyncOnLeave = false
	svc, mock, players := newTestService(t, cfg)

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	players.Connect(p)

	svc.OnJoin(p)
	svc.OnLeave(p)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.False(t, svc.IsSyncInProgress(p.UUID()))
	_, ok := svc.LastSyncTime(p.UUID())
	assert.False(t, ok, "disabled sync must not record an attempt")
}
