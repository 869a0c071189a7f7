package openfoodfacts

import (
	"github.com/localshelf/backend/internal/domain"
)

// Sentinel values for fields the external catalog did not provide. The UI
// renders these directly instead of special-casing missing data.
const (
	UnknownName     = "Unknown name"
	UnknownBrand    = "Unknown brand"
	UnknownCategory = "Unknown category"
	UnknownTags     = "Unknown tags"
	Unavailable     = "Unavailable"
)

// Normalize converts an Open Food Facts record into the canonical product
// shape. Every optional field maps to a defined sentinel; the source tag is
// always ExternalCatalog.
func Normalize(raw domain.ExternalProductRaw) domain.Product {
	product := domain.Product{
		ID:                  raw.Code,
		Name:                raw.ProductName,
		Brand:               raw.Brands,
		Category:            raw.Categories,
		Tags:                raw.Keywords,
		EcoScore:            raw.EcoscoreGrade,
		OriginCountry:       raw.Origin,
		ManufacturingPlaces: raw.ManufacturingPlaces,
		ImageURL:            raw.ImageFrontURL,
		Source:              domain.SourceExternalCatalog,
	}

	if product.Name == "" {
		product.Name = UnknownName
	}
	if product.Brand == "" {
		product.Brand = UnknownBrand
	}
	if product.Category == "" {
		product.Category = UnknownCategory
	}
	if len(product.Tags) == 0 {
		product.Tags = []string{UnknownTags}
	}
	if product.EcoScore == "" {
		product.EcoScore = Unavailable
	}
	if product.OriginCountry == "" {
		product.OriginCountry = Unavailable
	}
	if product.ManufacturingPlaces == "" {
		product.ManufacturingPlaces = Unavailable
	}
	// Missing images stay empty so the UI can fall back to a placeholder.

	return product
}

// NormalizeAll converts a batch of raw records.
func NormalizeAll(raws []domain.ExternalProductRaw) []domain.Product {
	products := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, Normalize(raw))
	}
	return products
}
