package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"gopkg.in/yaml.v3"
)

const snapshotFileExt = ".yml"

type fileSnapshot struct {
	dir string
}

// NewFileSnapshotRepository keeps one YAML document per key inside dir.
func NewFileSnapshotRepository(dir string) (SnapshotRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("can't create save directory: %w", err)
	}

	return &fileSnapshot{
		dir: dir,
	}, nil
}

func (that *fileSnapshot) Save(ctx context.Context, key string, snapshot *entity.Snapshot) error {
	path, err := that.path(key)
	if err != nil {
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	payload, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	// write-then-rename so a crash never leaves a half written save
	tmp, err := os.CreateTemp(that.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("can't create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("can't write snapshot: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("can't write snapshot: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("can't save snapshot: %w", err)
	}

	return nil
}

func (that *fileSnapshot) Load(ctx context.Context, key string) (*entity.Snapshot, error) {
	path, err := that.path(key)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't read snapshot: %w", err)
	}

	var snapshot entity.Snapshot
	if err = yaml.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

func (that *fileSnapshot) HasKey(_ context.Context, key string) (bool, error) {
	path, err := that.path(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("can't check snapshot: %w", err)
	}

	return true, nil
}

func (that *fileSnapshot) Delete(_ context.Context, key string) error {
	path, err := that.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("can't delete snapshot: %w", err)
	}

	return nil
}

func (that *fileSnapshot) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	if key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return filepath.Join(that.dir, key+snapshotFileExt), nil
}
