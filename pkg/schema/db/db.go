package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/everyday-christian-tagger/pkg/schema/config"
	"github.com/everyday-christian-tagger/pkg/schema/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	verseDB *sqlx.DB
	dbOnce  sync.Once
	dbMu    sync.RWMutex
)

// dbEnabled tracks whether the database was initialized
var dbEnabled bool

// Init opens the process-wide verse database using the environment config.
func Init(ctx context.Context) error {
	var initErr error
	dbOnce.Do(func() {
		conn, err := Open(ctx, config.GetConfig())
		if err != nil {
			initErr = err
			return
		}

		dbMu.Lock()
		verseDB = conn
		dbEnabled = true
		dbMu.Unlock()
	})
	return initErr
}

// Enabled returns whether the database is available
func Enabled() bool {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return dbEnabled
}

// Get returns the process-wide database instance
func Get() *sqlx.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return verseDB
}

// Close closes the process-wide database connection
func Close() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if verseDB != nil {
		return verseDB.Close()
	}
	return nil
}

// Open connects to the database described by cfg, verifies connectivity and
// applies the schema.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("DB_PATH is required for sqlite")
		}
		conn, err = sqlx.ConnectContext(ctx, sqlite.DriverName(), cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite %s: %w", cfg.DBPath, err)
		}
		// One writer; also keeps ":memory:" databases on a single connection
		conn.SetMaxOpenConns(1)

	case DriverPostgres:
		if cfg.PostgresURI == "" {
			return nil, fmt.Errorf("POSTGRES_URI is required")
		}
		conn, err = sqlx.ConnectContext(ctx, DriverPostgres, cfg.PostgresURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}

		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		conn.SetMaxOpenConns(maxOpen)
		conn.SetMaxIdleConns(maxOpen)
		conn.SetConnMaxLifetime(5 * time.Minute)
		conn.SetConnMaxIdleTime(1 * time.Minute)

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// IsPostgres reports whether conn uses the PostgreSQL driver
func IsPostgres(conn *sqlx.DB) bool {
	return conn.DriverName() == DriverPostgres
}
