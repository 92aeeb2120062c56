package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/iho/subledger/internal/adapter/grpc/middleware"
	"github.com/iho/subledger/internal/adapter/grpc/server"
	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/adapter/idgen"
	"github.com/iho/subledger/internal/adapter/repository/memory"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

type fixture struct {
	conn  *grpc.ClientConn
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	ids := idgen.NewULIDGenerator()
	logger := zerolog.Nop()

	ledgerUC := usecase.NewLedgerUseCase(store.Parties(), store.Documents(), memory.NewCache(), time.Minute, nil, logger)
	reconcileUC := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		Ledgers:        ledgerUC,
		DocumentRepo:   store.Documents(),
		Sessions:       memory.NewSessionStore(),
		IDGen:          ids,
		PersistCleared: true,
		Logger:         logger,
	})

	srv := server.New(server.Config{
		Ledger:           ledgerUC,
		Reconciliation:   reconcileUC,
		IdempotencyStore: memory.NewIdempotencyStore(),
		Logger:           logger,
	})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	seedVendor(t, store)

	return &fixture{conn: conn, store: store}
}

func seedVendor(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	opened := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Parties().Create(ctx, &domain.Party{
		ID:                 "v1",
		Name:               "Supplier",
		Type:               domain.PartyTypeVendor,
		OpeningBalance:     decimal.NewFromInt(1000),
		OpeningBalanceDate: &opened,
	}))
	require.NoError(t, store.Documents().Save(ctx, &domain.Document{
		ID:   "bill1",
		Kind: domain.KindPurchaseBill,
		Fields: map[string]any{
			"vendorId": "v1", "date": "2023-01-10", "billNumber": "BILL-1", "grandTotal": "500",
		},
	}))
	require.NoError(t, store.Documents().Save(ctx, &domain.Document{
		ID:   "pay1",
		Kind: domain.KindPayment,
		Fields: map[string]any{
			"paidTo": "v1", "date": "2023-01-20", "paymentNumber": "PAY-1", "amount": "300",
		},
	}))
}

func TestLedgerServer_GetStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var st dto.StatementResponse
	err := server.Invoke(ctx, f.conn, "GetStatement", &server.StatementRequest{PartyID: "v1"}, &st)
	require.NoError(t, err)
	require.Len(t, st.Entries, 3)
	assert.Equal(t, "Supplier", st.Party.Name)
	assert.True(t, st.FinalBalance.Equal(decimal.NewFromInt(1200)), st.FinalBalance.String())

	err = server.Invoke(ctx, f.conn, "GetStatement", &server.StatementRequest{PartyID: "v1", From: "bad"}, &st)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = server.Invoke(ctx, f.conn, "GetStatement", &server.StatementRequest{PartyID: "v1", From: "2023-02-01", To: "2023-01-01"}, &st)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLedgerServer_ReconciliationWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var session dto.ReconciliationResponse
	require.NoError(t, server.Invoke(ctx, f.conn, "OpenReconciliation", &server.OpenReconciliationRequest{PartyID: "v1"}, &session))
	require.NotEmpty(t, session.ID)
	assert.Equal(t, "vendor", session.PartyType)

	err := server.Invoke(ctx, f.conn, "UpdateSelection",
		&server.SelectionRequest{SessionID: session.ID, SelectionRequest: dto.SelectionRequest{Select: []int{1}}}, &session)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err), "selection before start")

	start := &server.StartReconciliationRequest{SessionID: session.ID}
	start.StatementEndingBalance = decimal.NewFromInt(1200)
	start.StatementEndingDate = "2023-01-31"
	require.NoError(t, server.Invoke(ctx, f.conn, "StartReconciliation", start, &session))

	err = server.Invoke(ctx, f.conn, "UpdateSelection",
		&server.SelectionRequest{SessionID: session.ID, SelectionRequest: dto.SelectionRequest{Select: []int{0}}}, &session)
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "opening entry")

	require.NoError(t, server.Invoke(ctx, f.conn, "UpdateSelection",
		&server.SelectionRequest{SessionID: session.ID, SelectionRequest: dto.SelectionRequest{Select: []int{1, 2}}}, &session))
	assert.True(t, session.Summary.Reconciled, "difference %s", session.Summary.Difference)

	var fin dto.FinalizeResponse
	require.NoError(t, server.Invoke(ctx, f.conn, "FinalizeReconciliation", &server.SessionRequest{SessionID: session.ID}, &fin))
	assert.True(t, fin.Persisted)
	assert.Len(t, fin.Cleared, 2)

	doc, err := f.store.Documents().GetByID(ctx, domain.KindPayment, "pay1")
	require.NoError(t, err)
	assert.True(t, doc.Cleared)

	err = server.Invoke(ctx, f.conn, "GetReconciliation", &server.SessionRequest{SessionID: session.ID}, &session)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestLedgerServer_CloseReconciliation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var session dto.ReconciliationResponse
	require.NoError(t, server.Invoke(ctx, f.conn, "OpenReconciliation", &server.OpenReconciliationRequest{PartyID: "v1"}, &session))

	var closed server.CloseReconciliationResponse
	require.NoError(t, server.Invoke(ctx, f.conn, "CloseReconciliation", &server.SessionRequest{SessionID: session.ID}, &closed))
	assert.True(t, closed.Closed)

	err := server.Invoke(ctx, f.conn, "FinalizeReconciliation", &server.SessionRequest{SessionID: session.ID}, &dto.FinalizeResponse{})
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = server.Invoke(ctx, f.conn, "OpenReconciliation", &server.OpenReconciliationRequest{}, &session)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLedgerServer_IdempotentOpen(t *testing.T) {
	f := newFixture(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), middleware.IdempotencyKeyHeader, "open-1")

	var first, second dto.ReconciliationResponse
	require.NoError(t, server.Invoke(ctx, f.conn, "OpenReconciliation", &server.OpenReconciliationRequest{PartyID: "v1"}, &first))

	var header metadata.MD
	require.NoError(t, server.Invoke(ctx, f.conn, "OpenReconciliation", &server.OpenReconciliationRequest{PartyID: "v1"}, &second, grpc.Header(&header)))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"true"}, header.Get("x-idempotency-replay"))
}
