package service

import (
	"context"

	"armar/internal/database"
	"armar/internal/metrics"
	"armar/internal/models"

	"github.com/rs/zerolog"
)

// Source tells where a listing came from.
type Source string

const (
	SourceStorage  Source = "storage"
	SourceFallback Source = "fallback"
)

// Reasons a listing falls back to static data.
const (
	ReasonEmpty       = "empty"
	ReasonUnavailable = "unavailable"
	ReasonError       = "error"
)

// CatalogService serves the service catalog and gallery, falling back to static
// content whenever the store yields nothing usable.
type CatalogService struct {
	store  database.Store
	logger *zerolog.Logger
}

func NewCatalogService(store database.Store, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

func (s *CatalogService) ListServices(ctx context.Context) ([]models.ServiceResponse, Source) {
	items, err := listDocuments(ctx, s, models.CollectionService, 0, models.NewServiceResponse)
	if len(items) == 0 {
		s.fallback(models.CollectionService, err)
		return FallbackServices(), SourceFallback
	}
	return items, SourceStorage
}

func (s *CatalogService) ListGallery(ctx context.Context) ([]models.GalleryImageResponse, Source) {
	items, err := listDocuments(ctx, s, models.CollectionGalleryImage, models.GalleryLimit, models.NewGalleryImageResponse)
	if len(items) == 0 {
		s.fallback(models.CollectionGalleryImage, err)
		return FallbackGallery(), SourceFallback
	}
	return items, SourceStorage
}

// listDocuments reads a collection and maps each valid record to its public shape.
// Records that do not decode or validate are skipped.
func listDocuments[T any, R any](
	ctx context.Context,
	s *CatalogService,
	collection string,
	limit int,
	mapRecord func(id string, record T) R,
) ([]R, error) {
	docs, err := s.store.GetDocuments(ctx, collection, limit)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	out := make([]R, 0, len(docs))
	for _, doc := range docs {
		var record T
		if err := doc.Decode(&record); err != nil {
			s.logger.Warn().Err(err).Str("collection", collection).Str("id", doc.ID).Msg("skip undecodable document")
			continue
		}
		if err := models.Validate(record); err != nil {
			s.logger.Warn().Err(err).Str("collection", collection).Str("id", doc.ID).Msg("skip invalid document")
			continue
		}
		out = append(out, mapRecord(doc.ID, record))
	}
	return out, nil
}

func (s *CatalogService) fallback(collection string, err error) {
	reason := fallbackReason(err)
	metrics.IncFallback(collection, reason)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.Str("collection", collection).Str("reason", reason).Msg("serving static fallback")
}

func fallbackReason(err error) string {
	switch {
	case err == nil:
		return ReasonEmpty
	case database.IsUnavailable(err):
		return ReasonUnavailable
	default:
		return ReasonError
	}
}
