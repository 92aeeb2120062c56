package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iho/subledger/internal/domain"
)

// MapDomainError converts domain errors to gRPC status errors.
// Unknown errors become codes.Internal without their details.
func MapDomainError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	// Not Found errors
	case errors.Is(err, domain.ErrPartyNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())

	// Invalid Argument errors
	case errors.Is(err, domain.ErrInvalidPartyType),
		errors.Is(err, domain.ErrInvalidPartyName),
		errors.Is(err, domain.ErrOpeningBalanceImmutable),
		errors.Is(err, domain.ErrUnknownDocumentKind),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrOpeningEntryNotSelectable):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, domain.ErrPartyAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())

	// Session lifecycle violations
	case errors.Is(err, domain.ErrInvalidSessionState),
		errors.Is(err, domain.ErrNotReconciled):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "operation timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "operation was canceled")

	default:
		return status.Error(codes.Internal, "an internal error occurred")
	}
}
