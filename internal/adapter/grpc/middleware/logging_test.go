package middleware_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/subledger/internal/adapter/grpc/middleware"
)

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := middleware.LoggingInterceptor(zerolog.New(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: "/subledger.v1.LedgerService/GetReconciliation"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "reconciliation session not found")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected handler error to pass through, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"code":"NotFound"`, `"method":"/subledger.v1.LedgerService/GetReconciliation"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log to contain %s, got %s", want, out)
		}
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := middleware.RecoveryInterceptor(zerolog.New(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: "/subledger.v1.LedgerService/GetStatement"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})

	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
	if !strings.Contains(buf.String(), "grpc handler panic") {
		t.Fatalf("expected panic to be logged, got %s", buf.String())
	}
}
