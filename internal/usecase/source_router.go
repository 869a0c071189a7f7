package usecase

import (
	"log"
	"strings"

	"github.com/localshelf/backend/internal/domain"
)

// SourceSet names which collaborators an alternative search should query.
type SourceSet struct {
	Internal bool
	External bool
}

// externalCategories is the set of product domains the external catalog has
// coverage for. Querying it outside these wastes a network round trip for a
// guaranteed-empty result.
var externalCategories = []string{"Food", "Beverages"}

// Route decides which sources to query for alternatives. referenceSource is
// the resolved reference's tag, or empty on the filters-only path.
//
// An internal reference always fans out to both sources. An external
// reference (or no reference) queries the internal store unconditionally and
// the external catalog only when the category is one it covers.
func Route(criteria domain.SearchCriteria, referenceSource domain.Source) SourceSet {
	if referenceSource == domain.SourceInternal {
		return SourceSet{Internal: true, External: true}
	}

	set := SourceSet{Internal: true}
	if categorySupported(criteria.Category) {
		set.External = true
	} else {
		log.Printf("[Engine] external catalog does not yet support category %q, skipping external search", criteria.Category)
	}
	return set
}

// categorySupported reports whether any segment of a (possibly
// comma-separated) category string is covered by the external catalog.
func categorySupported(category string) bool {
	for _, segment := range strings.Split(category, ",") {
		segment = strings.TrimSpace(segment)
		for _, supported := range externalCategories {
			if strings.EqualFold(segment, supported) {
				return true
			}
		}
	}
	return false
}
