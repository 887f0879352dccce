// Package history records battlepass progress snapshots in a local sqlite
// database so runs can be compared and exported.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Snapshot struct {
	TakenAt      time.Time `json:"taken_at"`
	ContractID   string    `json:"contract_id"`
	XPEarned     int       `json:"xp_earned"`
	LevelReached int       `json:"level_reached"`
}

type Filter struct {
	Since      time.Time
	ContractID string
}

type Store struct {
	db *sql.DB
}

const createSnapshotStmt = `
	CREATE TABLE IF NOT EXISTS snapshot (
		taken_at INTEGER NOT NULL,
		contract_id VARCHAR NOT NULL,
		xp_earned INTEGER NOT NULL,
		level_reached INTEGER NOT NULL
	)
`

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	if _, err := db.Exec(createSnapshotStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, snap Snapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshot (taken_at, contract_id, xp_earned, level_reached) VALUES (?, ?, ?, ?)`,
		snap.TakenAt.Unix(), snap.ContractID, snap.XPEarned, snap.LevelReached)
	if err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}

	return nil
}

// Latest returns the most recent snapshot of a contract.
func (s *Store) Latest(ctx context.Context, contractID string) (Snapshot, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT taken_at, contract_id, xp_earned, level_reached
		FROM snapshot
		WHERE contract_id = ?
		ORDER BY taken_at DESC, rowid DESC
		LIMIT 1
	`, contractID)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}

	if err != nil {
		return Snapshot{}, false, fmt.Errorf("latest snapshot: %w", err)
	}

	return snap, true, nil
}

// List returns snapshots oldest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Snapshot, error) {
	query := `
		SELECT taken_at, contract_id, xp_earned, level_reached
		FROM snapshot
		WHERE taken_at >= ?
	`
	args := []any{filter.Since.Unix()}

	if filter.ContractID != "" {
		query += " AND contract_id = ?"
		args = append(args, filter.ContractID)
	}

	query += " ORDER BY taken_at, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}

		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return snapshots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var (
		takenAt int64
		snap    Snapshot
	)

	if err := row.Scan(&takenAt, &snap.ContractID, &snap.XPEarned, &snap.LevelReached); err != nil {
		return Snapshot{}, err
	}

	snap.TakenAt = time.Unix(takenAt, 0).UTC()

	return snap, nil
}
