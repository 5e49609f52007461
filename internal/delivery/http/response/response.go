package response

import (
	"encoding/json"
	"net/http"

	"github.com/avolkov/catalog_insights/internal/domain"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Error writes an error response
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// Success writes a success response with data
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// Created writes a created response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// NoContent writes a no content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// List writes a paginated list response. Meta carries the totals the grid
// needs to decide whether another page exists.
func List(w http.ResponseWriter, items []*domain.Item, meta domain.PageMeta) {
	if items == nil {
		items = []*domain.Item{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(items),
		"data":    items,
		"meta": map[string]interface{}{
			"total":      meta.Total,
			"totalPages": meta.TotalPages,
			"page":       meta.Page,
			"limit":      meta.Limit,
			"hasMore":    meta.HasMore,
		},
	})
}
