package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"armar/internal/database"
	"armar/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// CatalogSeed is the YAML file used to fill the service and gallery collections.
type CatalogSeed struct {
	Services []models.Service      `yaml:"services"`
	Gallery  []models.GalleryImage `yaml:"gallery"`
}

// SeedResult counts what a seeding run did.
type SeedResult struct {
	Services int
	Gallery  int
	Skipped  int
}

func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if len(seed.Services) == 0 && len(seed.Gallery) == 0 {
		return nil, fmt.Errorf("no services or gallery images in %s", path)
	}
	return &seed, nil
}

// SeedCatalog inserts seed entries that are not stored yet. Services match on title,
// gallery images on url. Every entry is validated before anything is written.
func SeedCatalog(ctx context.Context, store database.Store, seed *CatalogSeed, logger *zerolog.Logger) (SeedResult, error) {
	var result SeedResult

	for i, svc := range seed.Services {
		if err := models.Validate(svc); err != nil {
			return result, fmt.Errorf("services[%d]: %w", i, err)
		}
	}
	for i, img := range seed.Gallery {
		if err := models.Validate(img); err != nil {
			return result, fmt.Errorf("gallery[%d]: %w", i, err)
		}
	}

	titles, err := existingValues(ctx, store, models.CollectionService, "title")
	if err != nil {
		return result, err
	}
	for _, svc := range seed.Services {
		key := strings.ToLower(strings.TrimSpace(svc.Title))
		if titles[key] {
			result.Skipped++
			continue
		}
		svc.ApplyDefaults()
		if _, err := store.CreateDocument(ctx, models.CollectionService, svc); err != nil {
			return result, fmt.Errorf("create service %s: %w", svc.Title, err)
		}
		titles[key] = true
		result.Services++
	}

	urls, err := existingValues(ctx, store, models.CollectionGalleryImage, "url")
	if err != nil {
		return result, err
	}
	for _, img := range seed.Gallery {
		key := strings.TrimSpace(img.URL)
		if urls[key] {
			result.Skipped++
			continue
		}
		if _, err := store.CreateDocument(ctx, models.CollectionGalleryImage, img); err != nil {
			return result, fmt.Errorf("create gallery image %s: %w", img.URL, err)
		}
		urls[key] = true
		result.Gallery++
	}

	if logger != nil {
		logger.Info().
			Int("services", result.Services).
			Int("gallery", result.Gallery).
			Int("skipped", result.Skipped).
			Msg("catalog seeded")
	}
	return result, nil
}

func existingValues(ctx context.Context, store database.Store, collection, field string) (map[string]bool, error) {
	docs, err := store.GetDocuments(ctx, collection, 0)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		v, _ := doc.Fields[field].(string)
		v = strings.TrimSpace(v)
		if field == "title" {
			v = strings.ToLower(v)
		}
		if v != "" {
			seen[v] = true
		}
	}
	return seen, nil
}
