// Package like is the like registry: it records directed likes inside a
// group, enforces the sending rules and hands reciprocal pairs to the
// match factory.
package like

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/groupmatch/internal/app"
	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/db"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
	"github.com/oggyb/groupmatch/internal/metrics"
	"github.com/oggyb/groupmatch/internal/notify"
	"github.com/oggyb/groupmatch/internal/policy"
	"github.com/oggyb/groupmatch/internal/repository"
	"github.com/oggyb/groupmatch/internal/service/match"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Result is what SendLike reports back.
type Result struct {
	LikeID  uint64
	IsMatch bool
	MatchID *uint64
}

// Credits is a user's like budget as the policy sees it.
type Credits struct {
	Credits        int
	IsPremium      bool
	LikesSentToday int
	DailyLimit     int
}

// Service implements the like registry.
type Service struct {
	appCtx     *app.AppContext
	store      *repository.Store
	cfg        config.Matching
	policy     policy.Policy
	dispatcher *notify.Dispatcher
}

// NewService creates a like Service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		store:      repository.NewStore(appCtx.DB),
		cfg:        appCtx.Config.Matching,
		policy:     policy.New(appCtx.Config.Matching),
		dispatcher: notify.NewDispatcher(appCtx.Notifier, appCtx.Logger),
	}
}

// SendLike records a like from fromUserID to toUserID inside groupID.
//
// Behavior:
//   - Locks both users (ascending id) so concurrent likes between the same
//     pair serialize, then runs every policy check in order.
//   - Re-reads the reciprocal like under the lock to decide is_match.
//   - Inserts the like and charges its cost in the same transaction.
//   - On reciprocity flips the other like and creates the match.
//   - Notifications leave only after commit; their failures are logged.
//
// Example:
//
//	res, err := svc.SendLike(ctx, 1, 2, 10)
func (s *Service) SendLike(ctx context.Context, fromUserID, toUserID, groupID uint64) (*Result, error) {
	if fromUserID == 0 || toUserID == 0 || groupID == 0 {
		return nil, svcErr.New(svcErr.KindInvalidArgument, "user and group ids are required")
	}
	if fromUserID == toUserID {
		return nil, svcErr.New(svcErr.KindInvalidArgument, "cannot like yourself")
	}

	now := s.appCtx.Now()
	var (
		box          notify.Outbox
		res          Result
		matchCreated bool
	)
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		box.Reset()
		res = Result{}
		matchCreated = false

		snap, sender, err := s.snapshot(ctx, tx, fromUserID, toUserID, groupID, now)
		if err != nil {
			return err
		}
		if err := s.policy.Check(snap, now); err != nil {
			return err
		}

		reciprocal, err := tx.Likes.GetForUpdate(ctx, toUserID, fromUserID, groupID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		isMatch := reciprocal != nil

		like := &db.Like{
			FromUserID: fromUserID,
			ToUserID:   toUserID,
			GroupID:    groupID,
			IsMatch:    isMatch,
			CreatedAt:  now,
		}
		if err := tx.Likes.Create(ctx, like); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return svcErr.ErrDuplicateLike
			}
			return err
		}

		charged, err := tx.Users.ChargeLike(ctx, fromUserID, policy.CalculateLikeCost(sender.IsPremium), s.cfg.DayKey(now), now)
		if err != nil {
			return err
		}
		if !charged {
			return svcErr.ErrInsufficientCredits
		}

		res.LikeID = like.ID
		res.IsMatch = isMatch

		if !isMatch {
			box.Add(notify.NewIntent(toUserID, notify.KindLikeReceived, notify.Payload{
				GroupID:    groupID,
				FromUserID: fromUserID,
				LikeID:     like.ID,
			}, now))
			return nil
		}

		if err := tx.Likes.SetMatch(ctx, reciprocal.ID, true); err != nil {
			return err
		}
		m, created, err := match.CreateInTx(ctx, tx, fromUserID, toUserID, groupID, now, &box)
		if err != nil {
			return err
		}
		res.MatchID = &m.ID
		matchCreated = created
		return nil
	})
	if err != nil {
		if _, ok := svcErr.KindOf(err); ok {
			metrics.LikesSent.WithLabelValues(metrics.OutcomeRejected).Inc()
		}
		s.appCtx.Logger.Debug("like rejected", "from", fromUserID, "to", toUserID, "group", groupID, "err", err)
		return nil, err
	}

	if res.IsMatch {
		metrics.LikesSent.WithLabelValues(metrics.OutcomeMatched).Inc()
		if matchCreated {
			metrics.MatchesCreated.Inc()
		}
	} else {
		metrics.LikesSent.WithLabelValues(metrics.OutcomeSent).Inc()
	}

	// the recipient gained a pending like; on a match the sender lost one
	s.invalidateCounts(ctx, toUserID, fromUserID)
	s.dispatcher.Dispatch(ctx, box.Intents())

	s.appCtx.Logger.Debug("like sent", "from", fromUserID, "to", toUserID, "group", groupID, "match", res.IsMatch)
	return &res, nil
}

// snapshot reads everything the policy needs inside tx.
func (s *Service) snapshot(
	ctx context.Context,
	tx *repository.Store,
	fromUserID, toUserID, groupID uint64,
	now time.Time,
) (policy.Snapshot, *db.User, error) {
	var snap policy.Snapshot

	users, err := tx.Users.LockPair(ctx, fromUserID, toUserID)
	if err != nil {
		return snap, nil, err
	}
	sender, ok := users[fromUserID]
	if !ok {
		return snap, nil, svcErr.ErrUserNotFound
	}
	if _, ok := users[toUserID]; !ok {
		return snap, nil, svcErr.ErrUserNotFound
	}
	snap.Sender = policy.Sender{Credits: sender.Credits, IsPremium: sender.IsPremium}

	if snap.SenderActive, err = tx.Memberships.IsActiveMember(ctx, fromUserID, groupID); err != nil {
		return snap, nil, err
	}
	if snap.TargetActive, err = tx.Memberships.IsActiveMember(ctx, toUserID, groupID); err != nil {
		return snap, nil, err
	}
	if !snap.SenderActive || !snap.TargetActive {
		return snap, sender, nil
	}

	if snap.AlreadyLiked, err = tx.Likes.Exists(ctx, fromUserID, toUserID, groupID); err != nil {
		return snap, nil, err
	}
	if snap.LastLikeAt, err = tx.Likes.LastLikeAt(ctx, fromUserID, toUserID); err != nil {
		return snap, nil, err
	}

	// sender row is locked, so the counter cannot move under us
	snap.SentToday = sender.SentOn(s.cfg.DayKey(now))
	return snap, sender, nil
}

// UnlikeUser withdraws a like. Credits are not refunded and the like still
// counts toward today's cap.
//
// Behavior:
//   - LIKE_NOT_FOUND if the like does not exist.
//   - If the like was part of a match, the match becomes DELETED and the
//     reciprocal like loses is_match.
//   - The like row is removed.
func (s *Service) UnlikeUser(ctx context.Context, fromUserID, toUserID, groupID uint64) error {
	if fromUserID == 0 || toUserID == 0 || groupID == 0 {
		return svcErr.New(svcErr.KindInvalidArgument, "user and group ids are required")
	}

	now := s.appCtx.Now()
	var matchEnded bool
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		matchEnded = false

		like, err := tx.Likes.GetForUpdate(ctx, fromUserID, toUserID, groupID)
		if repository.IsNotFound(err) {
			return svcErr.ErrLikeNotFound
		}
		if err != nil {
			return err
		}

		if like.IsMatch {
			u1, u2 := db.Canonical(fromUserID, toUserID)
			m, err := tx.Matches.FindLive(ctx, u1, u2, groupID)
			switch {
			case err == nil:
				// also clears is_match on the reciprocal like
				if matchEnded, err = match.EndInTx(ctx, tx, m, fromUserID, now); err != nil {
					return err
				}
			case repository.IsNotFound(err):
				if err := tx.Likes.ClearPair(ctx, fromUserID, toUserID, groupID); err != nil {
					return err
				}
			default:
				return err
			}
		}

		return tx.Likes.Delete(ctx, like.ID)
	})
	if err != nil {
		return err
	}

	if matchEnded {
		metrics.MatchesDeleted.WithLabelValues(metrics.ReasonUnlike).Inc()
	}
	s.invalidateCounts(ctx, toUserID, fromUserID)
	s.appCtx.Logger.Debug("like withdrawn", "from", fromUserID, "to", toUserID, "group", groupID, "match_ended", matchEnded)
	return nil
}

// ListLikesReceived returns likes userID has not answered yet, newest first.
func (s *Service) ListLikesReceived(
	ctx context.Context,
	userID uint64,
	groupID *uint64,
	pageToken *string,
	limit int,
) ([]db.Like, *string, error) {
	if userID == 0 {
		return nil, nil, svcErr.New(svcErr.KindInvalidArgument, "user id is required")
	}

	var (
		likes []db.Like
		next  *string
	)
	err := repository.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		likes, next, err = s.store.Likes.ListReceived(ctx, userID, groupID, pageToken, pageSize(limit))
		return err
	})
	return likes, next, err
}

// CountLikesReceived returns how many unanswered likes userID has.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:received:userID).
//  2. If cache miss or error, falls back to DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountLikesReceived(ctx context.Context, userID uint64) (int64, error) {
	if userID == 0 {
		return 0, svcErr.New(svcErr.KindInvalidArgument, "user id is required")
	}

	rc := s.appCtx.RedisCache
	if rc != nil {
		if n, ok, err := rc.GetLikeCount(ctx, userID); err == nil && ok {
			return n, nil
		} else if err != nil {
			s.appCtx.Logger.Warn("like count cache read failed", "user_id", userID, "err", err)
		}
	}

	// fallback: DB
	var count int64
	err := repository.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		count, err = s.store.Likes.CountReceived(ctx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	if rc != nil {
		if err := rc.UpdateLikeCount(ctx, userID, count); err != nil {
			s.appCtx.Logger.Warn("like count cache write failed", "user_id", userID, "err", err)
		}
	}
	return count, nil
}

// GetCredits reports a user's balance and today's usage.
func (s *Service) GetCredits(ctx context.Context, userID uint64) (*Credits, error) {
	if userID == 0 {
		return nil, svcErr.New(svcErr.KindInvalidArgument, "user id is required")
	}

	u, err := s.store.Users.Get(ctx, userID)
	if repository.IsNotFound(err) {
		return nil, svcErr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	limit := s.cfg.MaxDailyLikes
	if u.IsPremium {
		limit = 0
	}
	return &Credits{
		Credits:        u.Credits,
		IsPremium:      u.IsPremium,
		LikesSentToday: u.SentOn(s.cfg.DayKey(s.appCtx.Now())),
		DailyLimit:     limit,
	}, nil
}

func (s *Service) invalidateCounts(ctx context.Context, userIDs ...uint64) {
	rc := s.appCtx.RedisCache
	if rc == nil {
		return
	}
	if err := rc.InvalidateLikeCounts(ctx, userIDs...); err != nil {
		ids := make([]string, 0, len(userIDs))
		for _, id := range userIDs {
			ids = append(ids, strconv.FormatUint(id, 10))
		}
		s.appCtx.Logger.Warn("like count invalidation failed", "users", ids, "err", err)
	}
}

func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	}
	return limit
}
