package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/groupmatch/internal/config"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
	"github.com/oggyb/groupmatch/internal/policy"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func okSnapshot() policy.Snapshot {
	return policy.Snapshot{
		SenderActive: true,
		TargetActive: true,
		Sender:       policy.Sender{Credits: 5},
	}
}

func TestCalculateLikeCost(t *testing.T) {
	assert.Equal(t, 0, policy.CalculateLikeCost(true))
	assert.Equal(t, 1, policy.CalculateLikeCost(false))
}

func TestCooldownBoundary(t *testing.T) {
	p := policy.New(config.DefaultMatching())
	day := 24 * time.Hour

	assert.False(t, p.CooldownActive(nil, now))
	assert.True(t, p.CooldownActive(ago(time.Minute), now))
	assert.True(t, p.CooldownActive(ago(14*day-time.Nanosecond), now))
	// exactly T+14d is allowed
	assert.False(t, p.CooldownActive(ago(14*day), now))
	assert.False(t, p.CooldownActive(ago(15*day), now))
}

func TestDailyLimit(t *testing.T) {
	p := policy.Policy{MaxDailyLikes: 3, Cooldown: time.Hour}

	assert.False(t, p.DailyLimitReached(policy.Sender{Credits: 10}, 2))
	assert.True(t, p.DailyLimitReached(policy.Sender{Credits: 10}, 3))
	assert.False(t, p.DailyLimitReached(policy.Sender{IsPremium: true}, 100))

	unlimited := policy.Policy{MaxDailyLikes: 0}
	assert.False(t, unlimited.DailyLimitReached(policy.Sender{Credits: 1}, 1000))
}

func TestCanSendLike(t *testing.T) {
	p := policy.Policy{MaxDailyLikes: 2, Cooldown: 14 * 24 * time.Hour}

	assert.True(t, p.CanSendLike(policy.Sender{Credits: 1}, nil, 0, now))
	assert.False(t, p.CanSendLike(policy.Sender{Credits: 0}, nil, 0, now))
	assert.True(t, p.CanSendLike(policy.Sender{Credits: 0, IsPremium: true}, nil, 50, now))
	assert.False(t, p.CanSendLike(policy.Sender{Credits: 1}, ago(time.Hour), 0, now))
	assert.False(t, p.CanSendLike(policy.Sender{Credits: 9}, nil, 2, now))
}

func TestCheck_Order(t *testing.T) {
	p := policy.Policy{MaxDailyLikes: 1, Cooldown: 14 * 24 * time.Hour}

	t.Run("passes", func(t *testing.T) {
		assert.NoError(t, p.Check(okSnapshot(), now))
	})

	t.Run("not in group wins over everything", func(t *testing.T) {
		s := policy.Snapshot{
			SenderActive: true,
			TargetActive: false,
			AlreadyLiked: true,
			LastLikeAt:   ago(time.Hour),
			SentToday:    9,
		}
		assert.ErrorIs(t, p.Check(s, now), svcErr.ErrNotInGroup)
	})

	t.Run("duplicate before cooldown", func(t *testing.T) {
		s := okSnapshot()
		s.AlreadyLiked = true
		s.LastLikeAt = ago(time.Hour)
		assert.ErrorIs(t, p.Check(s, now), svcErr.ErrDuplicateLike)
	})

	t.Run("cooldown before credits", func(t *testing.T) {
		s := okSnapshot()
		s.LastLikeAt = ago(time.Hour)
		s.Sender.Credits = 0
		assert.ErrorIs(t, p.Check(s, now), svcErr.ErrCooldownActive)
	})

	t.Run("credits before daily cap", func(t *testing.T) {
		s := okSnapshot()
		s.Sender.Credits = 0
		s.SentToday = 5
		assert.ErrorIs(t, p.Check(s, now), svcErr.ErrInsufficientCredits)
	})

	t.Run("daily cap", func(t *testing.T) {
		s := okSnapshot()
		s.SentToday = 1
		assert.ErrorIs(t, p.Check(s, now), svcErr.ErrDailyLimitExceeded)
	})

	t.Run("premium skips credits and cap", func(t *testing.T) {
		s := okSnapshot()
		s.Sender = policy.Sender{IsPremium: true}
		s.SentToday = 100
		assert.NoError(t, p.Check(s, now))
	})
}
