package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// Schema files live at migration/{driver}/LATEST.sql and only use
// idempotent statements, so Migrate can run on every start.

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the full schema file for a driver.
const LatestSchemaFileName = "LATEST.sql"

// Migrate applies the latest schema for the configured driver.
func (s *Store) Migrate(ctx context.Context) error {
	filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file: %s", filePath)
	}

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if err := execute(ctx, tx, string(bytes)); err != nil {
		return errors.Wrapf(err, "failed to apply schema %s", filePath)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit schema")
	}

	slog.Info("schema applied", slog.String("driver", s.profile.Driver))
	return nil
}

// execute runs each semicolon-terminated statement of stmt.
func execute(ctx context.Context, tx *sql.Tx, stmt string) error {
	for _, q := range strings.Split(stmt, ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return errors.Wrapf(err, "failed to execute statement %q", strings.TrimSpace(q))
		}
	}
	return nil
}
