package usecase

import (
	"github.com/localshelf/backend/internal/domain"
)

// BuildCriteria derives search criteria from a resolved reference. Pure
// function, no I/O. This is the single place where the two reference schemas
// meet: internal references read canonical fields, external references read
// the catalog's own field names. Fields absent on the reference stay
// zero-valued so collaborators omit them instead of matching on empties.
func BuildCriteria(ref *domain.ResolvedReference) domain.SearchCriteria {
	criteria := domain.SearchCriteria{
		ProductSource: ref.Source,
	}

	switch {
	case ref.Internal != nil:
		criteria.ReferenceProductID = ref.Internal.ID
		criteria.ProductName = ref.Internal.Name
		criteria.Brand = ref.Internal.Brand
		criteria.Category = ref.Internal.Category
		criteria.Tags = ref.Internal.Tags

	case ref.External != nil:
		criteria.ReferenceProductID = ref.External.Code
		criteria.ProductName = ref.External.ProductName
		criteria.Brand = ref.External.Brands
		criteria.Category = ref.External.Categories
		criteria.Tags = ref.External.Keywords
	}

	return criteria
}
