package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"armar/internal/database"
	"armar/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
services:
  - title: Modular Kitchen
    description: L-shaped and parallel kitchens
    starting_price: 1499
    unit: per running ft
    featured: true
  - title: Study Tables
    starting_price: 650
gallery:
  - url: https://cdn.example.com/kitchen.jpg
    title: Kitchen in Kothrud
    category: kitchen
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogSeed(t *testing.T) {
	seed, err := LoadCatalogSeed(writeSeed(t, seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Services, 2)
	require.NotNil(t, seed.Services[0].StartingPrice)
	assert.Equal(t, 1499.0, *seed.Services[0].StartingPrice)
	assert.Equal(t, "per running ft", seed.Services[0].Unit)
	assert.True(t, seed.Services[0].Featured)
	require.Len(t, seed.Gallery, 1)
	assert.Equal(t, "kitchen", seed.Gallery[0].Category)

	_, err = LoadCatalogSeed(writeSeed(t, "services: []\n"))
	assert.Error(t, err)

	_, err = LoadCatalogSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := database.NewRedisStore(client, "armar", nil)

	seed, err := LoadCatalogSeed(writeSeed(t, seedYAML))
	require.NoError(t, err)

	res, err := SeedCatalog(ctx, store, seed, nil)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Services: 2, Gallery: 1}, res)

	items, source := newTestCatalog(store).ListServices(ctx)
	assert.Equal(t, SourceStorage, source)
	require.Len(t, items, 2)
	assert.Equal(t, models.DefaultServiceUnit, items[1].Unit)

	res, err = SeedCatalog(ctx, store, seed, nil)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skipped: 3}, res)
}

func TestSeedCatalogRejectsInvalidEntries(t *testing.T) {
	store := new(mockStore)
	seed := &CatalogSeed{Services: []models.Service{{Title: "Beds", StartingPrice: models.Price(10)}, {StartingPrice: models.Price(10)}}}

	_, err := SeedCatalog(context.Background(), store, seed, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "services[1]")
	store.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeedCatalogRejectsMissingPrice(t *testing.T) {
	seed, err := LoadCatalogSeed(writeSeed(t, "services:\n  - title: Wardrobes\n    price: 999\n"))
	require.NoError(t, err)
	require.Nil(t, seed.Services[0].StartingPrice)

	store := new(mockStore)
	_, err = SeedCatalog(context.Background(), store, seed, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "services[0]")
	assert.Contains(t, err.Error(), "starting_price")
	store.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeedCatalogUnavailable(t *testing.T) {
	seed := &CatalogSeed{Gallery: []models.GalleryImage{{URL: "https://cdn.example.com/a.jpg"}}}

	_, err := SeedCatalog(context.Background(), database.NewUnavailable(nil), seed, nil)
	require.Error(t, err)
	assert.True(t, database.IsUnavailable(err))
}
