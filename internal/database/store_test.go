package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"armar/internal/config"
	"armar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFieldsStampsTimes(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fields, err := toFields(models.QuoteRequest{Name: "Ravi", Phone: "1", Requirement: "Wardrobe"}, now)
	require.NoError(t, err)

	assert.Equal(t, "Ravi", fields["name"])
	assert.Equal(t, now, fields["created_at"])
	assert.Equal(t, now, fields["updated_at"])
	assert.NotContains(t, fields, "budget")
}

func TestToFieldsRejectsNonObject(t *testing.T) {
	_, err := toFields([]string{"a"}, time.Now())
	assert.Error(t, err)
}

func TestDocumentDecode(t *testing.T) {
	doc := Document{ID: "1", Fields: map[string]any{
		"title":          "TV Units",
		"starting_price": 799.0,
		"featured":       true,
		"created_at":     "2025-03-01T10:00:00Z",
	}}

	var svc models.Service
	require.NoError(t, doc.Decode(&svc))
	assert.Equal(t, "TV Units", svc.Title)
	require.NotNil(t, svc.StartingPrice)
	assert.Equal(t, 799.0, *svc.StartingPrice)
	assert.True(t, svc.Featured)

	bad := Document{ID: "2", Fields: map[string]any{"starting_price": "cheap"}}
	assert.Error(t, bad.Decode(&svc))
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("list: %w", &Error{Op: "find", Collection: "service", Err: cause})

	var dbErr *Error
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "find service: connection reset", dbErr.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsUnavailable(err))
	assert.Equal(t, "ping: boom", (&Error{Op: "ping", Err: errors.New("boom")}).Error())
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("NotConfigured", func(t *testing.T) {
		store := NewUnavailable(nil)
		_, err := store.CreateDocument(ctx, models.CollectionAppointment, models.Appointment{})
		assert.True(t, IsUnavailable(err))

		_, err = store.GetDocuments(ctx, models.CollectionService, 0)
		assert.True(t, IsUnavailable(err))

		status := store.Status(ctx)
		assert.Equal(t, StateNotInitialized, status.State)
		assert.NoError(t, status.Err)
		assert.NoError(t, store.Close(ctx))
	})

	t.Run("FailedToOpen", func(t *testing.T) {
		store := NewUnavailable(errors.New("unsupported database scheme"))
		_, err := store.GetDocuments(ctx, models.CollectionService, 0)
		assert.True(t, IsUnavailable(err))
		assert.Contains(t, err.Error(), "unsupported database scheme")

		status := store.Status(ctx)
		assert.Equal(t, StateNotAvailable, status.State)
		assert.Error(t, status.Err)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingName", func(t *testing.T) {
		store, err := Open(ctx, config.DatabaseConfig{URL: "mongodb://localhost:27017"}, nil)
		require.NoError(t, err)
		assert.Equal(t, StateNotInitialized, store.Status(ctx).State)
	})

	t.Run("UnknownScheme", func(t *testing.T) {
		_, err := Open(ctx, config.DatabaseConfig{URL: "postgres://localhost/armar", Name: "armar"}, nil)
		assert.Error(t, err)
	})

	t.Run("SQLite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "armar.db")
		store, err := Open(ctx, config.DatabaseConfig{URL: "sqlite://" + path, Name: "armar"}, nil)
		require.NoError(t, err)
		defer store.Close(ctx)

		_, ok := store.(*SQLiteStore)
		assert.True(t, ok)
		assert.FileExists(t, path)
	})

	t.Run("FileScheme", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "armar.db")
		store, err := Open(ctx, config.DatabaseConfig{URL: "file:" + path, Name: "armar"}, nil)
		require.NoError(t, err)
		defer store.Close(ctx)
		assert.Equal(t, StateConnected, store.Status(ctx).State)
	})

	t.Run("RedisBadURL", func(t *testing.T) {
		_, err := Open(ctx, config.DatabaseConfig{URL: "redis://localhost:6379/notadb", Name: "armar"}, nil)
		assert.Error(t, err)
	})
}

func TestTruncateCollections(t *testing.T) {
	names := []string{"l", "k", "j", "i", "h", "g", "f", "e", "d", "c", "b", "a"}
	got := truncateCollections(names)
	assert.Len(t, got, MaxStatusCollections)
	assert.Equal(t, "a", got[0])
	assert.Equal(t, "j", got[9])
}
