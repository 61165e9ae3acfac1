package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

type sqliteSnapshot struct {
	conn *sql.DB
}

func NewSQLiteSnapshotRepository(conn *sql.DB) SnapshotRepository {
	return &sqliteSnapshot{
		conn: conn,
	}
}

func (that *sqliteSnapshot) Save(ctx context.Context, key string, snapshot *entity.Snapshot) error {
	if err := validateKey(key); err != nil {
		return err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	query := `INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

	_, err = that.conn.ExecContext(ctx, query, key, string(payload), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save snapshot: %w", err)
	}

	return nil
}

func (that *sqliteSnapshot) Load(ctx context.Context, key string) (*entity.Snapshot, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	query := `SELECT payload FROM snapshots WHERE key = ?`

	var payload string

	err := that.conn.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't load snapshot: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

func (that *sqliteSnapshot) HasKey(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	query := `SELECT EXISTS(SELECT 1 FROM snapshots WHERE key = ?)`

	var exists bool
	if err := that.conn.QueryRowContext(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("can't check snapshot: %w", err)
	}

	return exists, nil
}

func (that *sqliteSnapshot) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	query := `DELETE FROM snapshots WHERE key = ?`

	if _, err := that.conn.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("can't delete snapshot: %w", err)
	}

	return nil
}
