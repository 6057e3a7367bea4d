package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is a single embedded SQL file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

type MigrationStatus struct {
	Version   int        `db:"version"`
	Name      string     `db:"name"`
	Applied   bool       `db:"-"`
	AppliedAt *time.Time `db:"applied_at"`
}

// Migrator applies the embedded migrations in version order and records
// them in schema_migrations.
type Migrator struct {
	db    *sqlx.DB
	files fs.FS
}

func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{db: db, files: migrationFiles}
}

// LoadMigrations parses "NNN_name.sql" files. Files without a numeric
// prefix are skipped.
func LoadMigrations(files fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(files, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		parts := strings.SplitN(name, "_", 2)
		if len(parts) < 2 {
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		content, err := fs.ReadFile(files, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]MigrationStatus, error) {
	var rows []MigrationStatus
	if err := m.db.SelectContext(ctx, &rows, `SELECT version, name, applied_at FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	out := make(map[int]MigrationStatus, len(rows))
	for _, r := range rows {
		r.Applied = true
		out[r.Version] = r
	}
	return out, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	migrations, err := LoadMigrations(m.files)
	if err != nil {
		return 0, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return count, fmt.Errorf("failed to begin migration %s: %w", mig.Name, err)
		}
		if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
			_ = tx.Rollback()
			return count, fmt.Errorf("failed to apply migration %s: %w", mig.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name); err != nil {
			_ = tx.Rollback()
			return count, fmt.Errorf("failed to record migration %s: %w", mig.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return count, fmt.Errorf("failed to commit migration %s: %w", mig.Name, err)
		}
		log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("Applied migration")
		count++
	}
	return count, nil
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	migrations, err := LoadMigrations(m.files)
	if err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, mig := range migrations {
		st := MigrationStatus{Version: mig.Version, Name: mig.Name}
		if a, ok := done[mig.Version]; ok {
			st.Applied = true
			st.AppliedAt = a.AppliedAt
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
