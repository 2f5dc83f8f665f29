package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"slices"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/branchlib/circulate/store"
	"github.com/branchlib/circulate/version"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	return &DB{d}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}

//go:embed migration
var migrationFS embed.FS

const latestSchemaFileName = "LATEST_SCHEMA.sql"

// Migrate applies the latest schema and records the schema version.
// The schema only uses CREATE IF NOT EXISTS, so reapplying it to an
// existing file is harmless.
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.applyLatestSchema(ctx); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}

	schemaVersion := version.GetSchemaVersion(version.GetCurrentVersion())
	migrationHistoryList, err := d.FindMigrationHistoryList(ctx, &store.FindMigrationHistory{})
	if err != nil {
		return errors.Wrap(err, "failed to find migration history list")
	}

	versions := make([]string, 0, len(migrationHistoryList))
	for _, history := range migrationHistoryList {
		versions = append(versions, history.Version)
	}
	slices.SortFunc(versions, version.SortVersion)
	if len(versions) > 0 && version.IsVersionGreaterOrEqualThan(versions[len(versions)-1], schemaVersion) {
		return nil
	}

	if _, err := d.UpsertMigrationHistory(ctx, &store.UpsertMigrationHistory{
		Version: schemaVersion,
	}); err != nil {
		return errors.Wrap(err, "failed to upsert migration history")
	}
	return nil
}

func (d *DB) applyLatestSchema(ctx context.Context) error {
	latestSchemaPath := fmt.Sprintf("migration/%s", latestSchemaFileName)
	buf, err := migrationFS.ReadFile(latestSchemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %q", latestSchemaPath)
	}

	stmt := string(buf)
	if err := d.execute(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to apply latest schema: %s", stmt)
	}
	return nil
}

// execute runs a single SQL statement within a transaction.
func (d *DB) execute(ctx context.Context, stmt string) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}

	return tx.Commit()
}
