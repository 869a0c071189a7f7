package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localshelf/backend/internal/domain"
	"github.com/localshelf/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	alternatives *usecase.AlternativesService
}

// NewHandler creates a new HTTP handler
func NewHandler(alternatives *usecase.AlternativesService) *Handler {
	return &Handler{
		alternatives: alternatives,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "localshelf-backend",
		"version": "1.0.0",
	})
}

// GetAlternatives handles GET /products/:id/alternatives?source=...&route=...
// It resolves the reference product in its declared source and responds with
// the merged alternative list.
func (h *Handler) GetAlternatives(c *gin.Context) {
	productID := c.Param("id")
	sourceTag := c.Query("source")
	currentRoute := c.Query("route")

	source, err := domain.ParseSource(sourceTag)
	if err != nil {
		// The declared source could not be "found" - same as a missing product.
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	products, err := h.alternatives.FindAlternatives(c.Request.Context(), productID, source, currentRoute)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// SearchAlternatives handles POST /alternatives/search. The body is a partial
// criteria object used verbatim against both sources (filters-only path).
func (h *Handler) SearchAlternatives(c *gin.Context) {
	var criteria domain.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search criteria: " + err.Error()})
		return
	}

	products, err := h.alternatives.SearchByFilters(c.Request.Context(), criteria)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// respondError maps engine errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrUnsupportedSource):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrResolutionFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
