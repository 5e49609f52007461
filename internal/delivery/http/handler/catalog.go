package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/avolkov/catalog_insights/internal/delivery/http/request"
	"github.com/avolkov/catalog_insights/internal/delivery/http/response"
	"github.com/avolkov/catalog_insights/internal/domain"
	"github.com/avolkov/catalog_insights/internal/pkg/logger"
	"github.com/avolkov/catalog_insights/internal/usecase/catalog"
)

// CatalogHandler handles HTTP requests for one catalog collection. The same
// handler serves products and movies; the bound service's schema decides
// which query parameters apply.
type CatalogHandler struct {
	service *catalog.Service
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *catalog.Service, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  log,
	}
}

// updatableFields whitelists the keys a partial update may touch
var updatableFields = map[string]bool{
	"name": true, "description": true, "categories": true,
	"price": true, "originalPrice": true, "stock": true, "sold": true,
	"rating": true, "discount": true, "featured": true,
	"brand": true, "origin": true, "imageUrl": true, "tags": true,
	"specifications": true, "year": true, "language": true, "country": true,
	"director": true, "cast": true, "runtime": true,
}

// List handles GET /api/{entity}
// @Summary List catalog items
// @Description Get a filtered, sorted page of catalog items
// @Tags Catalog
// @Accept json
// @Produce json
// @Param category query string false "Primary facet value; 'All' means unconstrained"
// @Param search query string false "Free-text search over name and description"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param minRating query number false "Minimum rating"
// @Param sortBy query string false "Sort key, '-' prefix for descending"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(36)
// @Success 200 {object} map[string]interface{} "Page of items with pagination meta"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity} [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	f := domain.ParseFilter(h.service.Schema(), r.URL.Query())
	page, limit := request.GetPageParams(r)
	sortBy := r.URL.Query().Get("sortBy")

	items, meta, err := h.service.List(r.Context(), f, sortBy, page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.List(w, items, meta)
}

// Stats handles GET /api/{entity}/stats
// @Summary Catalog analytics
// @Description Compute the aggregation bundle (totals, facet groups, distributions, rankings) over the filtered subset
// @Tags Catalog
// @Accept json
// @Produce json
// @Param category query string false "Primary facet value; 'All' means unconstrained"
// @Param search query string false "Free-text search over name and description"
// @Param minRating query number false "Minimum rating"
// @Success 200 {object} map[string]interface{} "Aggregation bundle"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity}/analytics/stats [get]
func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	f := domain.ParseFilter(h.service.Schema(), r.URL.Query())

	stats, err := h.service.Stats(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, stats)
}

// Recommendations handles GET /api/{entity}/recommendations
// @Summary Recommended items
// @Description Top-rated items of one primary-facet value above a rating floor
// @Tags Catalog
// @Accept json
// @Produce json
// @Param category query string false "Primary facet value; 'All' means unconstrained"
// @Param minRating query number false "Rating floor; defaults per collection"
// @Success 200 {object} map[string]interface{} "Recommended items"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity}/recommendations [get]
func (h *CatalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	facetValue := r.URL.Query().Get(h.service.Schema().PrimaryFacet().Param)
	minRating := request.GetFloatQuery(r, "minRating", 0)

	items, err := h.service.Recommendations(r.Context(), facetValue, minRating)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, items)
}

// FilterOptions handles GET /api/{entity}/filters/options
// @Summary Filter options
// @Description Distinct values per categorical dimension for filter dropdowns
// @Tags Catalog
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Available filter values"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity}/filters/options [get]
func (h *CatalogHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, opts)
}

// GetByID handles GET /api/{entity}/{id}
// @Summary Get a catalog item by ID
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]interface{} "Item details"
// @Failure 400 {object} map[string]string "Invalid item ID"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity}/{id} [get]
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, item)
}

// Create handles POST /api/{entity}
// @Summary Create a catalog item
// @Tags Catalog
// @Accept json
// @Produce json
// @Param item body domain.Item true "Item details"
// @Success 201 {object} map[string]interface{} "Item created successfully"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity} [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := request.DecodeJSON(r, &item); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item.ID = ""

	if err := h.service.Create(r.Context(), &item); err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Created(w, &item)
}

// Update handles PUT /api/{entity}/{id}
// @Summary Update a catalog item
// @Description Apply a partial update; unknown fields are ignored
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param fields body map[string]interface{} true "Fields to update"
// @Success 200 {object} map[string]interface{} "Updated item"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity}/{id} [put]
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var body map[string]interface{}
	if err := request.DecodeJSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]interface{}, len(body))
	for k, v := range body {
		if updatableFields[k] {
			fields[k] = v
		}
	}

	item, err := h.service.Update(r.Context(), id, fields)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, item)
}

// Delete handles DELETE /api/{entity}/{id}
// @Summary Delete a catalog item
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Success 204 "Item deleted successfully"
// @Failure 400 {object} map[string]string "Invalid item ID"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /{entity}/{id} [delete]
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	response.NoContent(w)
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *CatalogHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// client went away; nothing useful to write
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, domain.ErrUnavailable):
		response.Error(w, http.StatusServiceUnavailable, "Catalog store unavailable")
	default:
		h.logger.Error("Internal error in catalog handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
