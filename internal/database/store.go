package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"armar/internal/config"

	"github.com/rs/zerolog"
)

// MaxStatusCollections caps the collection names reported by Status.
const MaxStatusCollections = 10

// ErrUnavailable is returned when no database connection is configured or established.
var ErrUnavailable = errors.New("database not available")

// Error is a failure of an operation against a reachable database handle.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsUnavailable reports whether err means the store has no usable connection.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Document is a stored record with its identity rendered as a string.
// Fields never contains the backend's internal identity field.
type Document struct {
	ID     string
	Fields map[string]any
}

// Decode maps the document fields onto v.
func (d Document) Decode(v any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// State is the liveness of the database handle as shown by diagnostics.
type State string

const (
	StateNotAvailable       State = "not_available"
	StateNotInitialized     State = "not_initialized"
	StateConnected          State = "connected"
	StateConnectedWithError State = "connected_with_error"
)

// Status is a diagnostics snapshot of a store.
type Status struct {
	State       State
	Name        string
	Collections []string
	Err         error
}

// Store is the document storage used by the HTTP service.
type Store interface {
	// CreateDocument inserts record with creation timestamps and returns its identity.
	CreateDocument(ctx context.Context, collection string, record any) (string, error)
	// GetDocuments returns up to limit documents in storage order; limit <= 0 means no limit.
	GetDocuments(ctx context.Context, collection string, limit int) ([]Document, error)
	Status(ctx context.Context) Status
	Close(ctx context.Context) error
}

// Open connects to the database named by cfg. When the URL or name is missing the
// returned store is permanently not initialized. The URL scheme selects the backend.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (Store, error) {
	if !cfg.Configured() {
		return NewUnavailable(nil), nil
	}

	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return NewMongoStore(ctx, cfg, logger)
	case "redis", "rediss":
		return NewRedisStoreFromURL(ctx, cfg, logger)
	case "sqlite", "file":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return nil, errors.New("sqlite database url has no path")
		}
		return NewSQLiteStore(path, cfg.Name, logger)
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

// toFields converts a record to a field map and stamps creation times.
func toFields(record any, now time.Time) (map[string]any, error) {
	fields := map[string]any{}
	if record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("record is not an object: %w", err)
		}
	}
	fields["created_at"] = now.UTC()
	fields["updated_at"] = now.UTC()
	return fields, nil
}

func truncateCollections(names []string) []string {
	sort.Strings(names)
	if len(names) > MaxStatusCollections {
		names = names[:MaxStatusCollections]
	}
	return names
}

func nopIfNil(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}
