package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/subledger/internal/domain"
)

// DocumentUseCase stores the source documents the ledger reads.
type DocumentUseCase struct {
	documentRepo DocumentRepository
	idGen        IDGenerator
}

// NewDocumentUseCase creates a new DocumentUseCase.
func NewDocumentUseCase(documentRepo DocumentRepository, idGen IDGenerator) *DocumentUseCase {
	return &DocumentUseCase{
		documentRepo: documentRepo,
		idGen:        idGen,
	}
}

// SaveDocumentInput represents a document upsert.
type SaveDocumentInput struct {
	Kind   domain.DocumentKind
	ID     string
	Fields map[string]any
}

// SaveDocument creates or replaces a document. The reconciliation flags of
// an existing document are kept.
func (uc *DocumentUseCase) SaveDocument(ctx context.Context, input SaveDocumentInput) (*domain.Document, error) {
	if _, err := domain.AdapterFor(input.Kind); err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:        strings.TrimSpace(input.ID),
		Kind:      input.Kind,
		Fields:    input.Fields,
		UpdatedAt: time.Now().UTC(),
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}

	if doc.ID == "" {
		doc.ID = uc.idGen.Generate()
	} else {
		existing, err := uc.documentRepo.GetByID(ctx, input.Kind, doc.ID)
		switch {
		case err == nil:
			doc.Cleared = existing.Cleared
			doc.ClearedAt = existing.ClearedAt
		case !errors.Is(err, domain.ErrDocumentNotFound):
			return nil, err
		}
	}

	if err := uc.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// GetDocument retrieves one document.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, kind domain.DocumentKind, id string) (*domain.Document, error) {
	if _, err := domain.AdapterFor(kind); err != nil {
		return nil, err
	}
	return uc.documentRepo.GetByID(ctx, kind, id)
}

// ListDocuments lists the documents of kind that belong to partyID.
func (uc *DocumentUseCase) ListDocuments(ctx context.Context, kind domain.DocumentKind, partyID string) ([]*domain.Document, error) {
	if _, err := domain.AdapterFor(kind); err != nil {
		return nil, err
	}
	return uc.documentRepo.FindByParty(ctx, kind, partyID)
}
