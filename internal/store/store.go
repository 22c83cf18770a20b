package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Keys of the persisted session documents
const (
	KeyCSVData       = "csvData"
	KeyCSVFileName   = "csvFileName"
	KeyDerivedColumn = "leftColumnConfig"
	KeySavedTables   = "savedTables"
	KeyFilters       = "activeFilters"
)

// Drivers accepted by Open
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// ErrInvalidKey is returned for keys that are empty or contain path separators
var ErrInvalidKey = errors.New("invalid store key")

// Store is a small key/value document store.
type Store interface {
	// Get returns the document stored under key; ok is false when there is none.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Driver string
	// Path is the directory for the file driver and the database file or DSN for sqlite.
	Path string
}

// Open returns the backend selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(opts.Path)
	case DriverSQLite:
		return NewSQLite(ctx, opts.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// LoadJSON decodes the document under key into a T. Any failure, including
// a missing document, returns fallback.
func LoadJSON[T any](ctx context.Context, s Store, key string, fallback T, logger *slog.Logger) T {
	if logger == nil {
		logger = slog.Default()
	}
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "failed to read stored document, using defaults",
			slog.String("key", key), slog.String("error", err.Error()))
		return fallback
	}
	if !ok || len(data) == 0 {
		return fallback
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.WarnContext(ctx, "stored document is corrupt, using defaults",
			slog.String("key", key), slog.String("error", err.Error()))
		return fallback
	}
	return v
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// LoadString returns the raw document under key as a string, or "" when missing.
func LoadString(ctx context.Context, s Store, key string) (string, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return "", err
	}
	return string(data), nil
}
