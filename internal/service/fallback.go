package service

import "armar/internal/models"

// Static catalog served when the store is empty or unreachable.
var fallbackServices = []models.Service{
	{
		Title:         "Modular Kitchen",
		Description:   "Custom modular kitchens with premium finishes and hardware.",
		StartingPrice: models.Price(1499.0),
		Unit:          "per running ft",
		Featured:      true,
	},
	{
		Title:         "Wardrobes",
		Description:   "Sliding and hinged door wardrobes tailored to your space.",
		StartingPrice: models.Price(999.0),
		Unit:          "per sq ft",
		Featured:      true,
	},
	{
		Title:         "TV Units",
		Description:   "Modern media units with storage and lighting.",
		StartingPrice: models.Price(799.0),
		Unit:          "per unit",
		Featured:      false,
	},
}

var fallbackGallery = []models.GalleryImage{
	{URL: "https://images.unsplash.com/photo-1505693416388-ac5ce068fe85", Title: "Modular Kitchen"},
	{URL: "https://images.unsplash.com/photo-1616594039964-ae9021a400a0", Title: "Wardrobe"},
	{URL: "https://images.unsplash.com/photo-1493666438817-866a91353ca9", Title: "TV Unit"},
	{URL: "https://images.unsplash.com/photo-1598300187395-21b5b3a5b1d4", Title: "Storage"},
	{URL: "https://images.unsplash.com/photo-1617093727343-374698b9362d", Title: "Kitchen Island"},
}

// FallbackServices returns a copy of the static service list.
func FallbackServices() []models.ServiceResponse {
	out := make([]models.ServiceResponse, len(fallbackServices))
	for i, s := range fallbackServices {
		out[i] = models.NewServiceResponse("", s)
	}
	return out
}

// FallbackGallery returns a copy of the static gallery.
func FallbackGallery() []models.GalleryImageResponse {
	out := make([]models.GalleryImageResponse, len(fallbackGallery))
	for i, img := range fallbackGallery {
		out[i] = models.NewGalleryImageResponse("", img)
	}
	return out
}
