package domain

import (
	"fmt"
	"strings"
)

// Source identifies which collaborator a product record originated from.
// It also drives routing: re-resolving a product must go back to the
// collaborator named by its tag.
type Source string

const (
	// SourceInternal marks products from the application's own product store.
	SourceInternal Source = "internal"

	// SourceExternalCatalog marks products from the Open Food Facts catalog.
	SourceExternalCatalog Source = "externalCatalog"
)

// ParseSource converts a caller-supplied source tag into a Source value.
// Unknown tags fail with ErrUnsupportedSource carrying the offending value.
func ParseSource(tag string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "internal":
		return SourceInternal, nil
	case "externalcatalog", "external-catalog", "external":
		return SourceExternalCatalog, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSource, tag)
	}
}

// Product is the canonical product shape used throughout the engine.
// Every product the engine returns carries a non-empty Source tag.
type Product struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Brand               string   `json:"brand,omitempty"`
	Category            string   `json:"category,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	Source              Source   `json:"source"`
	Status              string   `json:"status,omitempty"` // lifecycle flag for internally-stored products
	EcoScore            string   `json:"ecoscore,omitempty"`
	OriginCountry       string   `json:"originCountry,omitempty"`
	ManufacturingPlaces string   `json:"manufacturingPlaces,omitempty"`
	ImageURL            string   `json:"imageUrl,omitempty"`
}

// SearchCriteria is the partial record of matchable attributes derived from a
// reference product or supplied directly by a caller. Zero-valued fields are
// absent, not "match empty": they are omitted from collaborator queries.
type SearchCriteria struct {
	// ReferenceProductID is excluded from matching; downstream consumers use
	// it to reorder results around the reference.
	ReferenceProductID string `json:"referenceProductId,omitempty"`

	ProductName string   `json:"productName,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status,omitempty"`

	// CurrentRoute is caller context, passed through to the internal store
	// opaquely.
	CurrentRoute string `json:"currentRoute,omitempty"`

	// ProductSource is the reference product's source. It is used for routing
	// only, never as a match filter.
	ProductSource Source `json:"productSource,omitempty"`
}

// ExternalProductRaw is the Open Food Facts record shape. It never leaves the
// normalizer: every other component works on the canonical Product.
type ExternalProductRaw struct {
	Code                string   `json:"code"`
	ProductName         string   `json:"product_name"`
	Brands              string   `json:"brands"`
	Categories          string   `json:"categories"`
	Keywords            []string `json:"_keywords"`
	EcoscoreGrade       string   `json:"ecoscore_grade"`
	Origin              string   `json:"origin"`
	ManufacturingPlaces string   `json:"manufacturing_places"`
	ImageFrontURL       string   `json:"image_front_url"`
}

// ResolvedReference holds whichever record a resolution call fetched,
// discriminated by Source. It lives for the duration of one request only.
type ResolvedReference struct {
	Source   Source
	Internal *Product
	External *ExternalProductRaw
}
