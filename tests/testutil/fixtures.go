package testutil

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/infrastructure/postgres"
	"github.com/iho/subledger/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and migrates it. The test is skipped
// when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	// Tests run from tests/integration or the repository root.
	migrationsPath := "migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "../../migrations"
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE documents;
		TRUNCATE TABLE parties;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestParty inserts a party directly, bypassing the use cases.
func (db *TestDB) CreateTestParty(ctx context.Context, name string, partyType domain.PartyType, opening decimal.Decimal, openingDate time.Time) *domain.Party {
	db.t.Helper()

	now := time.Now().UTC()
	id := GenerateID()

	var balance pgtype.Numeric
	_ = balance.Scan(opening.String())

	ts := pgtype.Timestamptz{Time: now, Valid: true}

	err := db.Queries.CreateParty(ctx, generated.CreatePartyParams{
		ID:                 id,
		Name:               name,
		PartyType:          string(partyType),
		OpeningBalance:     balance,
		OpeningBalanceDate: pgtype.Date{Time: openingDate, Valid: true},
		CreatedAt:          ts,
		UpdatedAt:          ts,
	})
	if err != nil {
		db.t.Fatalf("failed to create test party: %v", err)
	}

	return &domain.Party{
		ID:                 id,
		Name:               name,
		Type:               partyType,
		OpeningBalance:     opening,
		OpeningBalanceDate: &openingDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// CreateTestDocument inserts an uncleared document of kind for partyID.
func (db *TestDB) CreateTestDocument(ctx context.Context, kind domain.DocumentKind, partyID string, fields map[string]any) string {
	db.t.Helper()

	id := GenerateID()
	raw, err := json.Marshal(fields)
	if err != nil {
		db.t.Fatalf("failed to encode document fields: %v", err)
	}

	err = db.Queries.UpsertDocument(ctx, generated.UpsertDocumentParams{
		Kind:      string(kind),
		ID:        id,
		PartyID:   partyID,
		Fields:    raw,
		UpdatedAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	if err != nil {
		db.t.Fatalf("failed to create test document: %v", err)
	}

	return id
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
