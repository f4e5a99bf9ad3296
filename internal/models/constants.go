package models

// Collection names in the document store.
const (
	CollectionAppointment  = "appointment"
	CollectionQuoteRequest = "quoterequest"
	CollectionService      = "service"
	CollectionGalleryImage = "galleryimage"
)

const (
	// DefaultServiceUnit is the pricing unit used when a service record has none.
	DefaultServiceUnit = "per unit"

	// GalleryLimit caps the number of gallery images returned to callers.
	GalleryLimit = 30

	// DateLayout is the wire format of calendar dates.
	DateLayout = "2006-01-02"
)

// Submission acknowledgment statuses.
const (
	StatusSuccess  = "success"
	StatusReceived = "received"
)
