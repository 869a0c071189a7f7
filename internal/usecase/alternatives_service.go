package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/localshelf/backend/internal/domain"
	"github.com/localshelf/backend/internal/infrastructure/openfoodfacts"
)

// AlternativesServiceConfig holds configuration for the alternatives engine
type AlternativesServiceConfig struct {
	// ExternalTimeout bounds the external catalog branch so a slow API
	// cannot stall the whole lookup.
	ExternalTimeout time.Duration
}

// AlternativesService resolves a reference product and produces a merged,
// source-tagged list of candidate alternatives from the internal store and
// the external catalog. Stateless per call; all collaborators are injected.
type AlternativesService struct {
	store           domain.InternalStore
	catalog         domain.ExternalCatalog
	externalTimeout time.Duration
}

// NewAlternativesService creates a new alternatives engine with dependencies
func NewAlternativesService(
	store domain.InternalStore,
	catalog domain.ExternalCatalog,
	config AlternativesServiceConfig,
) *AlternativesService {
	externalTimeout := config.ExternalTimeout
	if externalTimeout == 0 {
		externalTimeout = 10 * time.Second
	}

	return &AlternativesService{
		store:           store,
		catalog:         catalog,
		externalTimeout: externalTimeout,
	}
}

// Resolve fetches the single reference product from the collaborator named by
// its source tag. A missing product is a legitimate not-found, not a
// transient error; no retries happen at this layer.
func (s *AlternativesService) Resolve(
	ctx context.Context,
	productID string,
	source domain.Source,
) (*domain.ResolvedReference, error) {
	switch source {
	case domain.SourceInternal:
		product, err := s.store.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		return &domain.ResolvedReference{Source: source, Internal: product}, nil

	case domain.SourceExternalCatalog:
		raw, err := s.catalog.GetByCode(ctx, productID)
		if err != nil {
			return nil, err
		}
		return &domain.ResolvedReference{Source: source, External: raw}, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSource, source)
	}
}

// FindAlternatives is the reference path of the engine.
// Flow: resolve -> build criteria -> route -> concurrent search -> merge.
func (s *AlternativesService) FindAlternatives(
	ctx context.Context,
	productID string,
	source domain.Source,
	currentRoute string,
) ([]domain.Product, error) {
	if productID == "" {
		return nil, domain.ErrInvalidRequest
	}

	reference, err := s.Resolve(ctx, productID, source)
	if err != nil {
		return nil, err
	}

	criteria := BuildCriteria(reference)
	criteria.CurrentRoute = currentRoute

	sources := Route(criteria, reference.Source)

	return s.searchAndMerge(ctx, criteria, sources)
}

// SearchByFilters is the filters-only path: the caller-supplied criteria are
// used verbatim, with no reference resolution or criteria building.
func (s *AlternativesService) SearchByFilters(
	ctx context.Context,
	criteria domain.SearchCriteria,
) ([]domain.Product, error) {
	sources := Route(criteria, "")
	return s.searchAndMerge(ctx, criteria, sources)
}

// searchAndMerge fans out to the routed sources concurrently, waits for both
// branches, and concatenates whatever they produced, internal first. A failed
// branch degrades to an empty slice; only when every queried branch fails does
// the whole request fail.
func (s *AlternativesService) searchAndMerge(
	ctx context.Context,
	criteria domain.SearchCriteria,
	sources SourceSet,
) ([]domain.Product, error) {
	var (
		internalResults []domain.Product
		externalResults []domain.Product
		internalErr     error
		externalErr     error
	)

	g, gctx := errgroup.WithContext(ctx)

	if sources.Internal {
		g.Go(func() error {
			internalResults, internalErr = s.searchInternal(gctx, criteria)
			// Branch errors are recovered locally; returning them here
			// would cancel the sibling search.
			return nil
		})
	}

	if sources.External {
		g.Go(func() error {
			extCtx, cancel := context.WithTimeout(gctx, s.externalTimeout)
			defer cancel()
			externalResults, externalErr = s.searchExternal(extCtx, criteria)
			return nil
		})
	}

	g.Wait()

	internalFailed := sources.Internal && internalErr != nil
	externalFailed := sources.External && externalErr != nil
	if internalFailed && (externalFailed || !sources.External) {
		return nil, fmt.Errorf("%w: %v", domain.ErrResolutionFailed, internalErr)
	}
	if externalFailed && !sources.Internal {
		return nil, fmt.Errorf("%w: %v", domain.ErrResolutionFailed, externalErr)
	}

	return mergeResults(internalResults, externalResults), nil
}

// searchInternal queries the internal store's filter endpoint and tags every
// record with the internal source. Failures are logged and reported to the
// caller as an empty result set.
func (s *AlternativesService) searchInternal(
	ctx context.Context,
	criteria domain.SearchCriteria,
) ([]domain.Product, error) {
	products, err := s.store.Filter(ctx, criteria)
	if err != nil {
		log.Printf("[Engine] internal search failed: %v", err)
		return nil, err
	}

	for i := range products {
		products[i].Source = domain.SourceInternal
	}

	return products, nil
}

// searchExternal queries the external catalog in one of two mutually
// exclusive modes and normalizes the results into the canonical schema.
// Failures are logged and reported to the caller as an empty result set.
func (s *AlternativesService) searchExternal(
	ctx context.Context,
	criteria domain.SearchCriteria,
) ([]domain.Product, error) {
	var (
		raws []domain.ExternalProductRaw
		err  error
	)

	if isBroadSweep(criteria) {
		raws, err = s.catalog.SearchBroadFood(ctx)
	} else {
		raws, err = s.catalog.SearchSimilar(ctx, criteria)
	}
	if err != nil {
		log.Printf("[Engine] external search failed: %v", err)
		return nil, err
	}

	return openfoodfacts.NormalizeAll(raws), nil
}

// isBroadSweep reports whether the caller gave so little discriminating
// information that only the unconstrained food sweep makes sense: category is
// Food and neither the product source nor tags are set.
func isBroadSweep(criteria domain.SearchCriteria) bool {
	return strings.EqualFold(criteria.Category, "Food") &&
		criteria.ProductSource == "" &&
		len(criteria.Tags) == 0
}

// mergeResults concatenates the two branches, internal first. No
// deduplication and no ranking: order is source priority, not relevance.
func mergeResults(internal, external []domain.Product) []domain.Product {
	merged := make([]domain.Product, 0, len(internal)+len(external))
	merged = append(merged, internal...)
	merged = append(merged, external...)
	return merged
}
