package repository

import (
	"database/sql"
	"os"

	"github.com/pkg/errors"
)

// EnsureSchema applies the idempotent DDL at startup. Real migrations are a
// deployment concern; the service only needs its tables to exist.
func EnsureSchema(db *sql.DB, schemaPath string) error {
	ddl, err := os.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrap(err, "read schema file")
	}
	if _, err := db.Exec(string(ddl)); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}
