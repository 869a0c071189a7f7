package domain

import "errors"

var (
	// ErrProductNotFound is returned when a reference product id does not
	// exist in its declared source.
	ErrProductNotFound = errors.New("product not found")

	// ErrUnsupportedSource is returned when a declared source tag is not one
	// of the known Source values.
	ErrUnsupportedSource = errors.New("unsupported product source")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrStoreUnavailable is returned when the internal store request fails.
	ErrStoreUnavailable = errors.New("internal store request failed")

	// ErrCatalogUnavailable is returned when the external catalog request fails.
	ErrCatalogUnavailable = errors.New("external catalog request failed")

	// ErrResolutionFailed is returned when both search branches fail and
	// there is nothing left to merge.
	ErrResolutionFailed = errors.New("alternative resolution failed on all sources")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
