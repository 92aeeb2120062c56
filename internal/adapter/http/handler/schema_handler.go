package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/subledger/internal/adapter/http/dto"
)

// SchemaHandler publishes JSON Schemas of request bodies.
type SchemaHandler struct{}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// List returns the names of the published schemas.
func (h *SchemaHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SchemaNames())
}

// Get returns one schema.
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	schema, err := dto.Schema(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "schema not found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, schema)
}
