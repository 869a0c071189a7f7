package openfoodfacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localshelf/backend/internal/domain"
	"github.com/localshelf/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://api.example.com", nil, ClientOptions{})

	assert.NotNil(t, client)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, 50, client.pageSize)
	assert.Equal(t, "LocalShelf/1.0", client.userAgent)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestGetByCode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/product/3017620422003.json", r.URL.Path)
		assert.Equal(t, "LocalShelf/1.0", r.Header.Get("User-Agent"))

		response := map[string]interface{}{
			"status": 1,
			"product": domain.ExternalProductRaw{
				Code:        "3017620422003",
				ProductName: "Hazelnut Spread",
				Brands:      "Choco Co",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	raw, err := client.GetByCode(context.Background(), "3017620422003")

	require.NoError(t, err)
	assert.Equal(t, "3017620422003", raw.Code)
	assert.Equal(t, "Hazelnut Spread", raw.ProductName)
	assert.Equal(t, "Choco Co", raw.Brands)
}

func TestGetByCode_UnknownBarcode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Open Food Facts answers 200 with status 0 for unknown barcodes
		json.NewEncoder(w).Encode(map[string]interface{}{"status": 0})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	raw, err := client.GetByCode(context.Background(), "0000000000000")

	assert.Nil(t, raw)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetByCode_NotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	_, err := client.GetByCode(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetByCode_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	_, err := client.GetByCode(context.Background(), "e1")

	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestSearchBroadFood_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		assert.Equal(t, "process", r.URL.Query().Get("action"))
		assert.Equal(t, "categories", r.URL.Query().Get("tagtype_0"))
		assert.Equal(t, "foods", r.URL.Query().Get("tag_0"))
		assert.Equal(t, "1", r.URL.Query().Get("json"))
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 2,
			"products": []domain.ExternalProductRaw{
				{Code: "e1", ProductName: "Bread"},
				{Code: "e2", ProductName: "Butter"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{PageSize: 25})

	products, err := client.SearchBroadFood(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "e1", products[0].Code)
	assert.Equal(t, "Butter", products[1].ProductName)
}

func TestSearchSimilar_OmitsAbsentCriteria(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Category absent: no categories tag filter may appear
		assert.Empty(t, r.URL.Query().Get("tagtype_0"))
		assert.Equal(t, "vegan oat", r.URL.Query().Get("search_terms"))

		json.NewEncoder(w).Encode(map[string]interface{}{"count": 0, "products": []domain.ExternalProductRaw{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	products, err := client.SearchSimilar(context.Background(), domain.SearchCriteria{
		Tags: []string{"vegan", "oat"},
	})

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSearchSimilar_WithCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "categories", r.URL.Query().Get("tagtype_0"))
		assert.Equal(t, "beverages", r.URL.Query().Get("tag_0"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    1,
			"products": []domain.ExternalProductRaw{{Code: "e3", ProductName: "Cola"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	products, err := client.SearchSimilar(context.Background(), domain.SearchCriteria{
		Category: "Beverages",
	})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "e3", products[0].Code)
}

func TestSearchSimilar_CachesResponses(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    1,
			"products": []domain.ExternalProductRaw{{Code: "e4", ProductName: "Juice"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, cache.NewMemoryCache(), ClientOptions{CacheTTL: time.Minute})

	criteria := domain.SearchCriteria{Category: "Beverages", Tags: []string{"juice"}}

	first, err := client.SearchSimilar(context.Background(), criteria)
	require.NoError(t, err)

	second, err := client.SearchSimilar(context.Background(), criteria)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second search must be served from cache")
}

func TestSearch_RetriesTransientFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    1,
			"products": []domain.ExternalProductRaw{{Code: "e5"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	products, err := client.SearchBroadFood(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestSearch_AllRetriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, ClientOptions{})

	_, err := client.SearchBroadFood(context.Background())

	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}
