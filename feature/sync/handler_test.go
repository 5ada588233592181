package sync

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/compat"
	"inventory-bridge/core/database"
	"inventory-bridge/core/payload"
)

// newStandbyApp wires the handler over a manager that never connected.
func newStandbyApp(t *testing.T) (*fiber.App, *adapter.MemoryProvider) {
	t.Helper()
	manager := database.NewManager(database.Config{TablePrefix: "ib_"}, nil)
	repo := database.NewRepository(manager, nil)
	codec := payload.NewCodec(compat.NewMappings(), "1.21.8", 4082, nil, nil)
	players := adapter.NewMemoryProvider()

	svc := NewService(defaultConfig(), repo, codec, players, nil, nil)
	svc.dispatch = func(task func()) { task() }
	h := NewHandler(svc, manager, nil)

	app := fiber.New()
	h.RegisterRoutes(app)
	return app, players
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHandler_Status(t *testing.T) {
	app, _ := newStandbyApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/status", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "lobby", body["server_id"])
	assert.Equal(t, "STANDBY", body["datastore"])
}

func TestHandler_PlayerStatusRejectsBadUUID(t *testing.T) {
	app, _ := newStandbyApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/players/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandler_PlayerStatus(t *testing.T) {
	app, _ := newStandbyApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/players/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["in_progress"])
	assert.NotContains(t, body, "last_sync")
}

func TestHandler_ManualSyncUnknownPlayer(t *testing.T) {
	app, _ := newStandbyApp(t)

	req := httptest.NewRequest("POST", "/sync/players/"+uuid.NewString(),
		strings.NewReader(`{"save":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandler_ManualSyncAccepted(t *testing.T) {
	app, players := newStandbyApp(t)

	p := adapter.NewMemoryPlayer(uuid.New(), "Steve")
	players.Connect(p)

	// Standby means the save itself fails and becomes a FAILED audit, but
	// the dispatch is still accepted.
	req := httptest.NewRequest("POST", "/sync/players/"+p.UUID().String(),
		strings.NewReader(`{"save":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}

func TestHandler_ReconnectFailureReports503(t *testing.T) {
	manager := database.NewManagerWithConnector(database.Config{TablePrefix: "ib_"}, nil,
		func(database.Config) (*gorm.DB, error) { return nil, errors.New("still down") })
	repo := database.NewRepository(manager, nil)
	codec := payload.NewCodec(compat.NewMappings(), "1.21.8", 4082, nil, nil)
	svc := NewService(defaultConfig(), repo, codec, adapter.NewMemoryProvider(), nil, nil)
	h := NewHandler(svc, manager, nil)

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/reconnect", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "STANDBY", body["datastore"])
}
