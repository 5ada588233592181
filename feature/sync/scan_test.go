package sync

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/database"
	"inventory-bridge/core/nbt"
	"inventory-bridge/core/payload"
)

type scanItem struct {
	slot  int8
	id    string
	count int32
}

func writeNBTName(buf *bytes.Buffer, name string) {
	_ = binary.Write(buf, binary.BigEndian, uint16(len(name)))
	buf.WriteString(name)
}

func writeNBTTag(buf *bytes.Buffer, tag byte, name string) {
	buf.WriteByte(tag)
	writeNBTName(buf, name)
}

// playerFileBytes builds a gzipped player save file with an inventory list
// and vitals, in the same layout the game writes.
func playerFileBytes(t *testing.T, items []scanItem, xpTotal, xpLevel int32, health float32, food int32) []byte {
	t.Helper()
	var b bytes.Buffer
	b.WriteByte(10) // root compound
	writeNBTName(&b, "")

	writeNBTTag(&b, 9, "Inventory")
	b.WriteByte(10) // list of compounds
	_ = binary.Write(&b, binary.BigEndian, int32(len(items)))
	for _, it := range items {
		writeNBTTag(&b, 1, "Slot")
		b.WriteByte(byte(it.slot))
		writeNBTTag(&b, 8, "id")
		writeNBTName(&b, it.id)
		writeNBTTag(&b, 3, "count")
		_ = binary.Write(&b, binary.BigEndian, it.count)
		b.WriteByte(0)
	}

	writeNBTTag(&b, 3, "XpTotal")
	_ = binary.Write(&b, binary.BigEndian, xpTotal)
	writeNBTTag(&b, 3, "XpLevel")
	_ = binary.Write(&b, binary.BigEndian, xpLevel)
	writeNBTTag(&b, 5, "Health")
	_ = binary.Write(&b, binary.BigEndian, health)
	writeNBTTag(&b, 3, "foodLevel")
	_ = binary.Write(&b, binary.BigEndian, food)
	b.WriteByte(0) // end root

	var out bytes.Buffer
	zw := gzip.NewWriter(&out)
	_, err := zw.Write(b.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return out.Bytes()
}

// newScanService builds a test service whose WorldPath points at a fresh
// temp world directory, returning the playerdata path for fixtures.
func newScanService(t *testing.T) (*Service, sqlmock.Sqlmock, *adapter.MemoryProvider, string) {
	t.Helper()
	world := t.TempDir()
	playerdata := filepath.Join(world, "playerdata")
	require.NoError(t, os.Mkdir(playerdata, 0o755))

	cfg := defaultConfig()
	cfg.WorldPath = world
	svc, mock, players := newTestService(t, cfg)
	return svc, mock, players, playerdata
}

func expectNoSnapshotRow(mock sqlmock.Sqlmock, id uuid.UUID) {
	mock.ExpectQuery("SELECT COUNT(.+) FROM `ib_inventories`").
		WithArgs(id.String(), "lobby").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
}

func TestScan_BootstrapsOfflinePlayer(t *testing.T) {
	svc, mock, _, playerdata := newScanService(t)

	id := uuid.New()
	data := playerFileBytes(t, []scanItem{{slot: 3, id: "minecraft:stone", count: 64}}, 500, 12, 17.5, 18)
	require.NoError(t, os.WriteFile(filepath.Join(playerdata, id.String()+".dat"), data, 0o644))

	expectNoSnapshotRow(mock, id)
	mock.ExpectExec("INSERT INTO `ib_inventories`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `ib_sync_log`").
		WithArgs(id.String(), "lobby", database.SyncKindInitialSync, database.SyncStatusSuccess, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	report, err := svc.ScanPlayerFiles()
	require.NoError(t, err)
	assert.Equal(t, ScanReport{Scanned: 1, Synced: 1}, report)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScan_SkipsPlayerWithExistingRow(t *testing.T) {
	svc, mock, _, playerdata := newScanService(t)

	id := uuid.New()
	data := playerFileBytes(t, nil, 0, 0, 20, 20)
	require.NoError(t, os.WriteFile(filepath.Join(playerdata, id.String()+".dat"), data, 0o644))

	mock.ExpectQuery("SELECT COUNT(.+) FROM `ib_inventories`").
		WithArgs(id.String(), "lobby").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	report, err := svc.ScanPlayerFiles()
	require.NoError(t, err)
	assert.Equal(t, ScanReport{Scanned: 1, Skipped: 1}, report)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScan_SkipsUnparseableFilename(t *testing.T) {
	svc, mock, _, playerdata := newScanService(t)

	require.NoError(t, os.WriteFile(filepath.Join(playerdata, "not-a-uuid.dat"), []byte("x"), 0o644))

	report, err := svc.ScanPlayerFiles()
	require.NoError(t, err)
	assert.Equal(t, ScanReport{Scanned: 1, Skipped: 1}, report)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScan_CorruptFileLeavesPlayerUnsynced(t *testing.T) {
	svc, mock, _, playerdata := newScanService(t)

	id := uuid.New()
	require.NoError(t, os.WriteFile(filepath.Join(playerdata, id.String()+".dat"),
		[]byte("definitely not gzip"), 0o644))

	expectNoSnapshotRow(mock, id)
	// Only the FAILED audit row; no snapshot may be written.
	mock.ExpectExec("INSERT INTO `ib_sync_log`").
		WithArgs(id.String(), "lobby", database.SyncKindInitialSync, database.SyncStatusFailed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	report, err := svc.ScanPlayerFiles()
	require.NoError(t, err)
	assert.Equal(t, ScanReport{Scanned: 1, Failed: 1}, report)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScan_ConnectedPlayerSavedLive(t *testing.T) {
	svc, mock, players, playerdata := newScanService(t)

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	require.NoError(t, p.Inventory().SetItem(0, &payload.ItemRecord{ID: "minecraft:diamond", Count: 3}))
	players.Connect(p)

	// The stale file on disk must be ignored in favour of the live state.
	data := playerFileBytes(t, []scanItem{{slot: 0, id: "minecraft:dirt", count: 1}}, 0, 0, 20, 20)
	require.NoError(t, os.WriteFile(filepath.Join(playerdata, p.UUID().String()+".dat"), data, 0o644))

	expectNoSnapshotRow(mock, p.UUID())
	mock.ExpectExec("INSERT INTO `ib_inventories`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `ib_sync_log`").
		WithArgs(p.UUID().String(), "lobby", database.SyncKindInitialSync, database.SyncStatusSuccess, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	report, err := svc.ScanPlayerFiles()
	require.NoError(t, err)
	assert.Equal(t, ScanReport{Scanned: 1, Synced: 1}, report)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScan_MissingPlayerdataDirectory(t *testing.T) {
	cfg := defaultConfig()
	cfg.WorldPath = filepath.Join(t.TempDir(), "no-such-world")
	svc, _, _ := newTestService(t, cfg)

	_, err := svc.ScanPlayerFiles()
	assert.ErrorContains(t, err, "read playerdata directory")
}

func TestEncodeOffline_ReducedFidelity(t *testing.T) {
	svc, _, _ := newTestService(t, defaultConfig())

	items := []nbt.Compound{
		{"Slot": int8(0), "id": "minecraft:stone", "count": int32(64)},
		{"Slot": int8(40), "id": "minecraft:shield", "count": int32(1)},
		// Out of range and missing identifier; both must be dropped.
		{"Slot": int8(100), "id": "minecraft:dirt", "count": int32(1)},
		{"Slot": int8(5), "count": int32(2)},
	}

	data, err := svc.encodeOffline(items, adapter.MainInventorySize)
	require.NoError(t, err)

	var env struct {
		Size  int                        `json:"size"`
		Items map[string]json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &env))
	assert.Equal(t, adapter.MainInventorySize, env.Size)
	assert.Len(t, env.Items, 2)
	assert.Contains(t, env.Items, "0")
	assert.Contains(t, env.Items, "40")
}
