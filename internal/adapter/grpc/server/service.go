package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/iho/subledger/internal/adapter/grpc/codec"
	"github.com/iho/subledger/internal/adapter/grpc/middleware"
	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/usecase"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "subledger.v1.LedgerService"

// LedgerService is the gRPC surface of the ledger and reconciliation use cases.
type LedgerService interface {
	GetStatement(context.Context, *StatementRequest) (*dto.StatementResponse, error)
	OpenReconciliation(context.Context, *OpenReconciliationRequest) (*dto.ReconciliationResponse, error)
	GetReconciliation(context.Context, *SessionRequest) (*dto.ReconciliationResponse, error)
	StartReconciliation(context.Context, *StartReconciliationRequest) (*dto.ReconciliationResponse, error)
	UpdateSelection(context.Context, *SelectionRequest) (*dto.ReconciliationResponse, error)
	FinalizeReconciliation(context.Context, *SessionRequest) (*dto.FinalizeResponse, error)
	CloseReconciliation(context.Context, *SessionRequest) (*CloseReconciliationResponse, error)
}

// ServiceDesc describes LedgerService for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerService)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetStatement", LedgerService.GetStatement),
		unary("OpenReconciliation", LedgerService.OpenReconciliation),
		unary("GetReconciliation", LedgerService.GetReconciliation),
		unary("StartReconciliation", LedgerService.StartReconciliation),
		unary("UpdateSelection", LedgerService.UpdateSelection),
		unary("FinalizeReconciliation", LedgerService.FinalizeReconciliation),
		unary("CloseReconciliation", LedgerService.CloseReconciliation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "subledger/v1/ledger",
}

// unary adapts a typed LedgerService method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(LedgerService, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			handler := func(ctx context.Context, req any) (any, error) {
				resp, err := call(srv.(LedgerService), ctx, req.(*Req))
				if err != nil {
					return nil, err
				}
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}

			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, handler)
		},
	}
}

// Config configures the gRPC server.
type Config struct {
	Ledger           StatementService
	Reconciliation   ReconciliationService
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// New builds a gRPC server exposing LedgerService.
func New(cfg Config) *grpc.Server {
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(cfg.Logger),
			middleware.LoggingInterceptor(cfg.Logger),
			middleware.IdempotencyInterceptor(cfg.IdempotencyStore, ttl, cfg.Logger),
		),
	)
	srv.RegisterService(&ServiceDesc, NewLedgerServer(cfg.Ledger, cfg.Reconciliation))

	return srv
}

// Invoke calls a LedgerService method over conn with the json codec.
func Invoke(ctx context.Context, conn grpc.ClientConnInterface, method string, req, resp any, opts ...grpc.CallOption) error {
	opts = append(opts, grpc.CallContentSubtype(codec.Name))
	return conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, opts...)
}
