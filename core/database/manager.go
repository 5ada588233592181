package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// State is the operational state of the datastore connection.
type State int32

const (
	// StateStandby means no usable connection exists. Every dependent
	// operation fails fast until an administrator reconnects.
	StateStandby State = iota
	// StateActive means the pool is live and the schema is bootstrapped.
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "ACTIVE"
	}
	return "STANDBY"
}

// ErrStandby is returned by DB while no connection is available. Callers
// must not block waiting for recovery; an administrator restores service
// with the reconnect command.
var ErrStandby = errors.New("datastore unavailable (standby mode): run the reconnect command once the database is reachable")

// Connect builds the pooled MySQL connection and verifies it with a ping.
func Connect(cfg Config) (*gorm.DB, error) {
	// The driver requires special characters in credentials to be URL
	// encoded; url.UserPassword handles both fields.
	userInfo := url.UserPassword(cfg.Username, cfg.Password).String()

	timeout := time.Duration(cfg.ConnectionTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%s&readTimeout=%s&writeTimeout=%s&tls=%t",
		userInfo, cfg.Host, cfg.Port, cfg.Database, timeout, timeout, timeout, cfg.UseSSL)

	// GORM's own logging is suppressed; operational failures surface
	// through the manager's standby state instead.
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	poolSize := cfg.MaxPoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	sqlDB.SetMaxOpenConns(poolSize)
	sqlDB.SetMaxIdleConns(poolSize)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Manager owns the pooled connection and the ACTIVE/STANDBY state machine.
// Transitions are explicit: any initialize/reconnect failure drops to
// standby; only a successful reconnect restores active. There is no
// automatic retry timer.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	// connect is swappable so tests can inject a mocked connection.
	connect func(Config) (*gorm.DB, error)

	mu      sync.RWMutex
	db      *gorm.DB
	state   State
	lastErr string
}

// NewManager creates a manager in standby state. Call Initialize to attempt
// the first connection.
func NewManager(cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:     cfg,
		logger:  log,
		connect: Connect,
		state:   StateStandby,
	}
}

// NewManagerWithConnector creates a manager whose connection is built by the
// given function instead of Connect. Embedding hosts and tests use it to
// supply their own pool.
func NewManagerWithConnector(cfg Config, log *zap.Logger, connect func(Config) (*gorm.DB, error)) *Manager {
	m := NewManager(cfg, log)
	if connect != nil {
		m.connect = connect
	}
	return m
}

// Initialize attempts to connect and bootstrap the schema. Failures are
// absorbed into standby state rather than returned: the host process keeps
// running in degraded mode either way.
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initializeLocked()
}

func (m *Manager) initializeLocked() {
	db, err := m.connect(m.cfg)
	if err != nil {
		m.state = StateStandby
		m.lastErr = err.Error()
		m.logger.Error("Database connection failed, entering standby mode", zap.Error(err))
		return
	}

	if err := createSchema(db, m.cfg.TablePrefix); err != nil {
		m.state = StateStandby
		m.lastErr = err.Error()
		m.logger.Error("Schema bootstrap failed, entering standby mode", zap.Error(err))
		closeDB(db)
		return
	}

	m.db = db
	m.state = StateActive
	m.lastErr = ""
	m.logger.Info("Database connection initialized",
		zap.String("host", m.cfg.Host),
		zap.String("database", m.cfg.Database),
		zap.String("table_prefix", m.cfg.TablePrefix))
}

// DB returns the pooled connection, or ErrStandby immediately when the
// manager is degraded.
func (m *Manager) DB() (*gorm.DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateActive || m.db == nil {
		return nil, ErrStandby
	}
	return m.db, nil
}

// State returns the current operational state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the failure detail recorded on the most recent failed
// initialize or reconnect, or "" when active.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// TablePrefix returns the configured schema object prefix.
func (m *Manager) TablePrefix() string {
	return m.cfg.TablePrefix
}

// Reconnect closes any stale pool and repeats the full initialize sequence.
// Safe to call repeatedly from an administrative command.
func (m *Manager) Reconnect() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger.Info("Administrator requested database reconnect")
	if m.db != nil {
		closeDB(m.db)
		m.db = nil
	}
	m.initializeLocked()
	if m.state == StateActive {
		m.logger.Info("Database reconnect succeeded, sync operations restored")
		return true
	}
	m.logger.Error("Database reconnect failed, continuing in standby mode",
		zap.String("last_error", m.lastErr))
	return false
}

// Reconfigure swaps the connection settings and repeats the reconnect
// sequence with them. Backs the administrative reload operation.
func (m *Manager) Reconfigure(cfg Config) bool {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	return m.Reconnect()
}

// Close releases pool resources. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		closeDB(m.db)
		m.db = nil
	}
	m.state = StateStandby
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
