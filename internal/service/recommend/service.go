// Package recommend ranks discovery candidates inside a group.
package recommend

import (
	"context"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/oggyb/groupmatch/internal/app"
	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/db"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
	"github.com/oggyb/groupmatch/internal/metrics"
	"github.com/oggyb/groupmatch/internal/repository"
)

// Candidate is an anonymized discovery entry. Bio is always nil and
// Nickname is masked until the two users match.
type Candidate struct {
	UserID       uint64
	Nickname     string
	Bio          *string
	ProfileImage *string
	Age          *int
	Gender       *string
	LastActive   time.Time
	Score        int
}

// Service implements the compatibility scorer.
type Service struct {
	appCtx *app.AppContext
	store  *repository.Store
	cfg    config.Matching

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customizes a Service.
type Option func(*Service)

// WithRand injects the jitter source. Tests pass a seeded one.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

func NewService(appCtx *app.AppContext, opts ...Option) *Service {
	s := &Service{
		appCtx: appCtx,
		store:  repository.NewStore(appCtx.DB),
		cfg:    appCtx.Config.Matching,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Recommend returns up to count candidates for userID in groupID, best
// first.
//
// Behavior:
//   - Requester must exist and be an ACTIVE member of the group.
//   - count is capped by the configured maximum.
//   - Ties keep ascending user id order.
//
// Example:
//
//	svc.Recommend(ctx, 42, 1, 5)
func (s *Service) Recommend(ctx context.Context, userID, groupID uint64, count int) ([]Candidate, error) {
	if userID == 0 || groupID == 0 {
		return nil, svcErr.New(svcErr.KindInvalidArgument, "user and group ids are required")
	}
	if count <= 0 {
		return nil, svcErr.New(svcErr.KindInvalidArgument, "count must be positive")
	}
	if s.cfg.RecommendMax > 0 && count > s.cfg.RecommendMax {
		count = s.cfg.RecommendMax
	}

	var (
		requester *db.User
		active    bool
		pool      []db.User
	)
	err := repository.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		if requester, err = s.store.Users.Get(ctx, userID); err != nil {
			return err
		}
		if active, err = s.store.Memberships.IsActiveMember(ctx, userID, groupID); err != nil || !active {
			return err
		}
		pool, err = s.store.Users.Candidates(ctx, userID, groupID, s.cfg.DeletedNickname)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, svcErr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, svcErr.ErrNotInGroup
	}

	now := s.appCtx.Now()
	out := make([]Candidate, 0, len(pool))
	for i := range pool {
		u := &pool[i]
		out = append(out, Candidate{
			UserID:       u.ID,
			Nickname:     MaskNickname(u.Nickname),
			ProfileImage: u.ProfileImage,
			Age:          u.Age,
			Gender:       u.Gender,
			LastActive:   u.LastActive,
			Score:        Score(requester, u, now, s.jitter()),
		})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		return b.Score - a.Score
	})
	if len(out) > count {
		out = out[:count]
	}

	for _, c := range out {
		metrics.RecommendScores.Observe(float64(c.Score))
	}
	s.appCtx.Logger.Debug("recommend", "user_id", userID, "group_id", groupID, "pool", len(pool), "returned", len(out))
	return out, nil
}

func (s *Service) jitter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(maxJitter + 1)
}
