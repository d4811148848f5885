// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/groupmatch/internal/utils/pagination"
)

// Domain is the ErrorInfo domain attached to every business error.
const Domain = "groupmatch"

var kindCodes = map[Kind]codes.Code{
	KindNotInGroup:          codes.FailedPrecondition,
	KindCooldownActive:      codes.FailedPrecondition,
	KindInsufficientCredits: codes.FailedPrecondition,
	KindDuplicateLike:       codes.AlreadyExists,
	KindDailyLimitExceeded:  codes.ResourceExhausted,
	KindLikeNotFound:        codes.NotFound,
	KindMatchNotFound:       codes.NotFound,
	KindUserNotFound:        codes.NotFound,
	KindForbidden:           codes.PermissionDenied,
	KindInvalidArgument:     codes.InvalidArgument,
}

// Map converts business and repo/infra errors into gRPC-friendly status errors.
// Business errors carry their Kind as ErrorInfo.Reason.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var be *Error
	if errors.As(err, &be) {
		code, ok := kindCodes[be.Kind]
		if !ok {
			code = codes.Unknown
		}
		st := status.New(code, be.Error())
		if withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
			Reason: string(be.Kind),
			Domain: Domain,
		}); derr == nil {
			st = withInfo
		}
		return st.Err()
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, pagination.ErrInvalidToken):
		return status.Error(codes.InvalidArgument, "invalid pagination token")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// ReasonOf extracts the business Kind from a status error produced by Map.
func ReasonOf(err error) (Kind, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == Domain {
			return Kind(info.GetReason()), true
		}
	}
	return "", false
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return Map(New(KindInvalidArgument, "%s", msg))
}
