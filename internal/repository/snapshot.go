package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

var ErrInvalidKey = errors.New("invalid snapshot key")

type SnapshotRepository interface {
	Save(ctx context.Context, key string, snapshot *entity.Snapshot) error
	Load(ctx context.Context, key string) (*entity.Snapshot, error)
	HasKey(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type dbSnapshot struct {
	client *redis.Client
}

func NewSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &dbSnapshot{
		client: client,
	}
}

func (that *dbSnapshot) Save(ctx context.Context, key string, snapshot *entity.Snapshot) error {
	if err := validateKey(key); err != nil {
		return err
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	err = that.client.Set(ctx, snapshotKey(key), snapshotJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) Load(ctx context.Context, key string) (*entity.Snapshot, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	response, err := that.client.Get(ctx, snapshotKey(key)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSnapshotNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

func (that *dbSnapshot) HasKey(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	count, err := that.client.Exists(ctx, snapshotKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}

	return count > 0, nil
}

func (that *dbSnapshot) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := that.client.Del(ctx, snapshotKey(key)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}

func snapshotKey(key string) string {
	return "snapshot:" + key
}
