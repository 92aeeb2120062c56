package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// PartyService defines the behavior needed by PartyHandler.
type PartyService interface {
	CreateParty(ctx context.Context, input usecase.CreatePartyInput) (*domain.Party, error)
	UpdateParty(ctx context.Context, input usecase.UpdatePartyInput) (*domain.Party, error)
	GetParty(ctx context.Context, id string) (*domain.Party, error)
	ListParties(ctx context.Context, input usecase.ListPartiesInput) ([]*domain.Party, error)
}

// PartyHandler handles party-related HTTP requests.
type PartyHandler struct {
	partyUC PartyService
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(partyUC PartyService) *PartyHandler {
	return &PartyHandler{partyUC: partyUC}
}

// Create creates a new party.
func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	party, err := h.partyUC.CreateParty(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create party", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PartyFromDomain(party))
}

// Update renames a party.
func (h *PartyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	party, err := h.partyUC.UpdateParty(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to update party", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PartyFromDomain(party))
}

// Get retrieves a party by ID.
func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing party ID", "")
		return
	}

	party, err := h.partyUC.GetParty(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get party", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PartyFromDomain(party))
}

// List lists parties, optionally of one type.
func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	parties, err := h.partyUC.ListParties(r.Context(), usecase.ListPartiesInput{
		Type:   domain.PartyType(strings.ToLower(r.URL.Query().Get("type"))),
		Limit:  parseIntQuery(r, "limit", usecase.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list parties", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PartiesFromDomain(parties))
}
