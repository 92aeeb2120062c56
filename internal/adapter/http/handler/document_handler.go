package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// maxDocumentBody bounds an uploaded document.
const maxDocumentBody = 1 << 20

// DocumentService defines the behavior needed by DocumentHandler.
type DocumentService interface {
	SaveDocument(ctx context.Context, input usecase.SaveDocumentInput) (*domain.Document, error)
	GetDocument(ctx context.Context, kind domain.DocumentKind, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, kind domain.DocumentKind, partyID string) ([]*domain.Document, error)
}

// DocumentHandler handles source document requests.
type DocumentHandler struct {
	documentUC DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentUC DocumentService) *DocumentHandler {
	return &DocumentHandler{documentUC: documentUC}
}

// Save creates or replaces a document of the kind in the path.
func (h *DocumentHandler) Save(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDocumentKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeDomainError(w, "invalid document kind", err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	input, err := dto.DecodeDocument(body, kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	doc, err := h.documentUC.SaveDocument(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to save document", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentFromDomain(doc))
}

// Get retrieves one document.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDocumentKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeDomainError(w, "invalid document kind", err)
		return
	}

	doc, err := h.documentUC.GetDocument(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get document", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentFromDomain(doc))
}

// List lists the documents of one kind posted to a party.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDocumentKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeDomainError(w, "invalid document kind", err)
		return
	}

	partyID := r.URL.Query().Get("party_id")
	if partyID == "" {
		writeError(w, http.StatusBadRequest, "missing party_id", "")
		return
	}

	docs, err := h.documentUC.ListDocuments(r.Context(), kind, partyID)
	if err != nil {
		writeDomainError(w, "failed to list documents", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentsFromDomain(docs))
}
