package models

// Service is an entry of the service catalog.
type Service struct {
	Title         string  `json:"title" yaml:"title" validate:"required"`
	Description   string  `json:"description,omitempty" yaml:"description"`
	StartingPrice *float64 `json:"starting_price" yaml:"starting_price" validate:"required,gte=0"`
	Unit          string  `json:"unit" yaml:"unit"`
	Featured      bool    `json:"featured" yaml:"featured"`
}

// Price returns a pointer to v for use as a StartingPrice.
func Price(v float64) *float64 {
	return &v
}

// ApplyDefaults fills optional fields that were left empty.
func (s *Service) ApplyDefaults() {
	if s.Unit == "" {
		s.Unit = DefaultServiceUnit
	}
}

// GalleryImage is a picture shown in the website gallery.
type GalleryImage struct {
	URL      string `json:"url" yaml:"url" validate:"required"`
	Title    string `json:"title,omitempty" yaml:"title"`
	Category string `json:"category,omitempty" yaml:"category"`
}

// ServiceResponse is a Service as returned to callers. ID is empty for fallback entries.
type ServiceResponse struct {
	ID string `json:"id,omitempty"`
	Service
}

// GalleryImageResponse is a GalleryImage as returned to callers.
type GalleryImageResponse struct {
	ID string `json:"id,omitempty"`
	GalleryImage
}

// NewServiceResponse maps a stored service onto its public shape.
func NewServiceResponse(id string, s Service) ServiceResponse {
	s.ApplyDefaults()
	if s.StartingPrice != nil {
		s.StartingPrice = Price(*s.StartingPrice)
	}
	return ServiceResponse{ID: id, Service: s}
}

// NewGalleryImageResponse maps a stored gallery image onto its public shape.
func NewGalleryImageResponse(id string, img GalleryImage) GalleryImageResponse {
	return GalleryImageResponse{ID: id, GalleryImage: img}
}
