package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/db/migrations"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
)

// Module provides the migrator to CLI commands.
var Module = fx.Provide(New)

// goose keeps its dialect and base filesystem in package state.
var gooseMu sync.Mutex

// Migrator applies the embedded schema migrations with goose.
type Migrator struct {
	db      *sql.DB
	dialect string
	fsys    fs.FS
	dir     string
	logger  *zap.Logger
}

// New constructs a migrator over the writer connection.
// The migration directory follows the configured driver.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	dialect, err := gooseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	return NewWithFS(cfg.Database.Driver, conns.Writer.DB, migrations.FS, migrations.Dir(dialect), logger)
}

// NewWithFS constructs a migrator reading migrations from dir inside fsys.
func NewWithFS(driver string, db *sql.DB, fsys fs.FS, dir string, logger *zap.Logger) (*Migrator, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, dialect: dialect, fsys: fsys, dir: dir, logger: logger}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(func() error {
		if err := goose.UpContext(ctx, m.db, m.dir); err != nil {
			if isNoMigrationErr(err) {
				m.logger.Info("no migrations to apply")
				return nil
			}
			return err
		}
		m.logger.Info("migrations applied")
		return nil
	})
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	return m.run(func() error {
		if all {
			if err := goose.DownToContext(ctx, m.db, m.dir, 0); err != nil && !isNoMigrationErr(err) {
				return err
			}
			m.logger.Info("migrations rolled back", zap.String("mode", "all"))
			return nil
		}

		if steps <= 0 {
			steps = 1
		}
		for i := 0; i < steps; i++ {
			if err := goose.DownContext(ctx, m.db, m.dir); err != nil {
				if isNoMigrationErr(err) {
					m.logger.Info("no migrations to rollback", zap.Int("rolled_back", i))
					return nil
				}
				return err
			}
		}
		m.logger.Info("migrations rolled back", zap.Int("steps", steps))
		return nil
	})
}

// Version reports the currently applied schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.run(func() error {
		v, err := goose.GetDBVersionContext(ctx, m.db)
		version = v
		return err
	})
	return version, err
}

func (m *Migrator) run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(m.fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(m.dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return fn()
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "postgres", "pg":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) || errors.Is(err, goose.ErrNoCurrentVersion) {
		return true
	}
	return strings.Contains(err.Error(), "no migrations")
}
