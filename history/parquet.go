package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

var ErrNothingToExport = errors.New("no snapshots to export")

// ExportParquet writes snapshots to a parquet file at target. The rows go
// through a temporary JSON file that duckdb reads back.
func ExportParquet(ctx context.Context, snapshots []Snapshot, target string) error {
	if len(snapshots) == 0 {
		return ErrNothingToExport
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	data, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "snapshots*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", f.Name(), err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.Name(), err)
	}

	_, err = db.ExecContext(ctx,
		fmt.Sprintf("COPY (SELECT * FROM READ_JSON_AUTO('%s')) TO '%s' (FORMAT PARQUET)",
			quote(f.Name()), quote(target)))
	if err != nil {
		return fmt.Errorf("export %s: %w", target, err)
	}

	return nil
}

// quote escapes a path for use inside a single quoted SQL string.
func quote(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
