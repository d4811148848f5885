// Package policy decides whether a like may be sent and what it costs.
// Everything here is pure: callers load the state, the policy judges it.
package policy

import (
	"time"

	"github.com/oggyb/groupmatch/internal/config"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
)

// Sender is the part of a user the policy looks at.
type Sender struct {
	Credits   int
	IsPremium bool
}

// Snapshot is the state read inside the sending transaction, in the order
// the checks consume it.
type Snapshot struct {
	SenderActive bool
	TargetActive bool
	AlreadyLiked bool       // same group
	LastLikeAt   *time.Time // most recent like to the target, any group
	Sender       Sender
	SentToday    int
}

// Policy carries the configurable limits.
type Policy struct {
	MaxDailyLikes int
	Cooldown      time.Duration
}

// New builds a Policy from the matching configuration.
func New(m config.Matching) Policy {
	return Policy{
		MaxDailyLikes: m.MaxDailyLikes,
		Cooldown:      m.LikeCooldown,
	}
}

// CalculateLikeCost returns the credits a like costs.
func CalculateLikeCost(isPremium bool) int {
	if isPremium {
		return 0
	}
	return 1
}

// CooldownActive reports whether a like sent at last still blocks a new
// one at now. The window is (now-cooldown, now]: a like sent exactly one
// cooldown ago no longer blocks.
func (p Policy) CooldownActive(last *time.Time, now time.Time) bool {
	if last == nil || p.Cooldown <= 0 {
		return false
	}
	return last.After(now.Add(-p.Cooldown))
}

// HasCredits is credits > 0 OR premium.
func HasCredits(s Sender) bool {
	return s.IsPremium || s.Credits > 0
}

// DailyLimitReached applies only to non-premium senders. A non-positive
// MaxDailyLikes disables the cap.
func (p Policy) DailyLimitReached(s Sender, sentToday int) bool {
	if s.IsPremium || p.MaxDailyLikes <= 0 {
		return false
	}
	return sentToday >= p.MaxDailyLikes
}

// CanSendLike is the boolean form of the sender-side rules: cooldown
// towards this target, credits, daily cap.
func (p Policy) CanSendLike(s Sender, lastLikeAt *time.Time, sentToday int, now time.Time) bool {
	return !p.CooldownActive(lastLikeAt, now) &&
		HasCredits(s) &&
		!p.DailyLimitReached(s, sentToday)
}

// Check runs every precondition in order and returns the first violation.
func (p Policy) Check(s Snapshot, now time.Time) error {
	if !s.SenderActive || !s.TargetActive {
		return svcErr.ErrNotInGroup
	}
	if s.AlreadyLiked {
		return svcErr.ErrDuplicateLike
	}
	if p.CooldownActive(s.LastLikeAt, now) {
		return svcErr.ErrCooldownActive
	}
	if !HasCredits(s.Sender) {
		return svcErr.ErrInsufficientCredits
	}
	if p.DailyLimitReached(s.Sender, s.SentToday) {
		return svcErr.ErrDailyLimitExceeded
	}
	return nil
}
