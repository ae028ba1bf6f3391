package quote

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

// mapDomainErrorToGRPC converts domain errors to gRPC status codes.
func mapDomainErrorToGRPC(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrEmptyRoomID):
		return status.Error(codes.InvalidArgument, "room_id is required")

	case errors.Is(err, domain.ErrInvalidGuests):
		return status.Error(codes.InvalidArgument, "guests must be positive")

	case errors.Is(err, domain.ErrInvalidStay):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, domain.ErrUnknownPolicy):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, domain.ErrDuplicateBasePrice), errors.Is(err, domain.ErrDuplicateSettlement):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")

	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
