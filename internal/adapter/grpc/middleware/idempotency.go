package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/iho/subledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the metadata key for idempotency
	IdempotencyKeyHeader = "x-idempotency-key"
)

// storedCall is what the store keeps for a finished call.
type storedCall struct {
	RequestHash string          `json:"request_hash"`
	Response    json.RawMessage `json:"response"`
}

// IdempotencyInterceptor replays the stored response of a mutating call
// that carries the x-idempotency-key metadata. Replayed responses are raw
// JSON and require the json codec. Get and List methods are never stored.
func IdempotencyInterceptor(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if store == nil || isReadOnlyMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}

		keys := md.Get(IdempotencyKeyHeader)
		if len(keys) == 0 {
			return handler(ctx, req)
		}

		idempotencyKey := keys[0]
		if idempotencyKey == "" {
			return nil, status.Error(codes.InvalidArgument, "idempotency key cannot be empty")
		}

		cacheKey := fmt.Sprintf("grpc:%s:%s", info.FullMethod, idempotencyKey)

		requestHash, err := hashRequest(req)
		if err != nil {
			return nil, status.Error(codes.Internal, "failed to generate request hash")
		}

		exists, cached, err := store.CheckAndSet(ctx, cacheKey, ttl)
		if err != nil {
			// Degraded mode without idempotency
			logger.Warn().Err(err).Str("method", info.FullMethod).Msg("idempotency store unavailable")
			return handler(ctx, req)
		}

		if exists {
			if cached == nil {
				return nil, status.Error(codes.Aborted, "request with this idempotency key is still in progress")
			}

			var prev storedCall
			if err := json.Unmarshal(cached, &prev); err != nil {
				return nil, status.Error(codes.Internal, "failed to read stored response")
			}
			if prev.RequestHash != requestHash {
				return nil, status.Error(codes.InvalidArgument, "idempotency key reused with different request body")
			}

			_ = grpc.SetHeader(ctx, metadata.Pairs("x-idempotency-replay", "true"))
			return prev.Response, nil
		}

		resp, err := handler(ctx, req)
		if err != nil {
			// Errors are not stored so the call can be retried
			if relErr := store.Release(ctx, cacheKey); relErr != nil {
				logger.Warn().Err(relErr).Str("key", cacheKey).Msg("failed to release idempotency key")
			}
			return resp, err
		}

		body, err := json.Marshal(resp)
		if err == nil {
			body, err = json.Marshal(storedCall{RequestHash: requestHash, Response: body})
		}
		if err == nil {
			err = store.Update(ctx, cacheKey, body, ttl)
		}
		if err != nil {
			logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to store idempotent response")
		}

		return resp, nil
	}
}

// isReadOnlyMethod reports whether the method name starts with Get or List.
func isReadOnlyMethod(fullMethod string) bool {
	name := fullMethod[strings.LastIndex(fullMethod, "/")+1:]
	return strings.HasPrefix(name, "Get") || strings.HasPrefix(name, "List")
}

// hashRequest generates a SHA-256 hash of the request for fingerprinting
func hashRequest(req any) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
