package errors

import (
	"errors"
	"fmt"
)

// Kind is the stable, client-facing identifier of a business error.
type Kind string

const (
	KindNotInGroup          Kind = "NOT_IN_GROUP"
	KindDuplicateLike       Kind = "DUPLICATE_LIKE"
	KindCooldownActive      Kind = "COOLDOWN_ACTIVE"
	KindInsufficientCredits Kind = "INSUFFICIENT_CREDITS"
	KindDailyLimitExceeded  Kind = "DAILY_LIMIT_EXCEEDED"
	KindLikeNotFound        Kind = "LIKE_NOT_FOUND"
	KindMatchNotFound       Kind = "MATCH_NOT_FOUND"
	KindForbidden           Kind = "FORBIDDEN"
	KindUserNotFound        Kind = "USER_NOT_FOUND"
	KindInvalidArgument     Kind = "INVALID_ARGUMENT"
)

// Error is an expected, recoverable business failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same Kind, so callers can compare against
// the sentinels below even when the message differs.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrNotInGroup          = &Error{Kind: KindNotInGroup, Message: "both users must be active members of the group"}
	ErrDuplicateLike       = &Error{Kind: KindDuplicateLike, Message: "like already sent in this group"}
	ErrCooldownActive      = &Error{Kind: KindCooldownActive, Message: "this user was liked recently"}
	ErrInsufficientCredits = &Error{Kind: KindInsufficientCredits, Message: "not enough credits"}
	ErrDailyLimitExceeded  = &Error{Kind: KindDailyLimitExceeded, Message: "daily like limit reached"}
	ErrLikeNotFound        = &Error{Kind: KindLikeNotFound, Message: "like not found"}
	ErrMatchNotFound       = &Error{Kind: KindMatchNotFound, Message: "match not found"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "caller is not a participant of this match"}
	ErrUserNotFound        = &Error{Kind: KindUserNotFound, Message: "user not found"}
)

// KindOf returns the business kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
