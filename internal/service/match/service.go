// Package match creates matches from reciprocal likes and runs their
// lifecycle: unmatch, report, expiry.
package match

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/oggyb/groupmatch/internal/app"
	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/db"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
	"github.com/oggyb/groupmatch/internal/metrics"
	"github.com/oggyb/groupmatch/internal/notify"
	"github.com/oggyb/groupmatch/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service implements the match factory and lifecycle operations on top of
// the repository layer. Each method is one transaction.
type Service struct {
	appCtx     *app.AppContext
	store      *repository.Store
	cfg        config.Matching
	dispatcher *notify.Dispatcher
}

// NewService creates a match Service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		store:      repository.NewStore(appCtx.DB),
		cfg:        appCtx.Config.Matching,
		dispatcher: notify.NewDispatcher(appCtx.Notifier, appCtx.Logger),
	}
}

// CreateMatch promotes a pair to an ACTIVE match in groupID. Calling it
// again for the same pair returns the existing match.
//
// Example:
//
//	m, _ := svc.CreateMatch(ctx, 7, 3, 1) // m.User1ID == 3
func (s *Service) CreateMatch(ctx context.Context, userA, userB, groupID uint64) (*db.Match, error) {
	if userA == 0 || userB == 0 || groupID == 0 {
		return nil, svcErr.New(svcErr.KindInvalidArgument, "user and group ids are required")
	}
	if userA == userB {
		return nil, svcErr.New(svcErr.KindInvalidArgument, "cannot match a user with themselves")
	}

	now := s.appCtx.Now()
	var (
		box     notify.Outbox
		m       *db.Match
		created bool
	)
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		box.Reset()
		var err error
		m, created, err = CreateInTx(ctx, tx, userA, userB, groupID, now, &box)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		metrics.MatchesCreated.Inc()
	}
	s.dispatcher.Dispatch(ctx, box.Intents())
	return m, nil
}

// DeleteMatch unmatches: the match becomes DELETED and both likes of the
// pair lose is_match. The like rows themselves stay.
//
// Behavior:
//   - Requester must be one of the two participants, else FORBIDDEN.
//   - Deleting an already DELETED match succeeds without changes.
func (s *Service) DeleteMatch(ctx context.Context, matchID, requesterID uint64) (*db.Match, error) {
	now := s.appCtx.Now()

	var (
		m       *db.Match
		deleted bool
	)
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		var err error
		m, deleted, err = endMatch(ctx, tx, matchID, requesterID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if deleted {
		metrics.MatchesDeleted.WithLabelValues(metrics.ReasonUnmatch).Inc()
		s.appCtx.Logger.Info("match deleted", "match_id", m.ID, "by", requesterID)
	}
	return m, nil
}

// ReportMatch ends the match like DeleteMatch and files a moderation
// report. It returns the report id.
func (s *Service) ReportMatch(ctx context.Context, matchID, reporterID uint64, reason string, description *string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", svcErr.New(svcErr.KindInvalidArgument, "reason is required")
	}

	now := s.appCtx.Now()
	var (
		box     notify.Outbox
		report  *db.MatchReport
		deleted bool
	)
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		box.Reset()

		m, del, err := endMatch(ctx, tx, matchID, reporterID, now)
		if err != nil {
			return err
		}
		deleted = del

		report = &db.MatchReport{
			ID:          uuid.NewString(),
			MatchID:     m.ID,
			ReporterID:  reporterID,
			Reason:      reason,
			Description: description,
			CreatedAt:   now,
		}
		if err := tx.Reports.Create(ctx, report); err != nil {
			return err
		}

		box.Add(notify.NewIntent(reporterID, notify.KindMatchReported, notify.Payload{
			GroupID:       m.GroupID,
			MatchID:       m.ID,
			CounterpartID: m.Counterpart(reporterID),
			Reason:        reason,
		}, now))
		return nil
	})
	if err != nil {
		return "", err
	}

	if deleted {
		metrics.MatchesDeleted.WithLabelValues(metrics.ReasonReported).Inc()
	}
	s.appCtx.Logger.Info("match reported", "match_id", matchID, "report_id", report.ID, "reason", reason)
	s.dispatcher.Dispatch(ctx, box.Intents())
	return report.ID, nil
}

// CleanupExpiredMatches expires every ACTIVE match older than the
// configured window that never got a message. It returns how many rows
// changed.
func (s *Service) CleanupExpiredMatches(ctx context.Context) (int64, error) {
	now := s.appCtx.Now()
	cutoff := now.Add(-s.cfg.MatchExpiry())

	n, err := s.store.Matches.ExpireStale(ctx, cutoff, now)
	if err != nil {
		s.appCtx.Logger.Error("expire matches failed", "err", err)
		return 0, err
	}

	metrics.MatchesExpired.Add(float64(n))
	s.appCtx.Logger.Info("expired stale matches", "count", n, "cutoff", cutoff)
	return n, nil
}

// ListMatches returns the matches userID takes part in, newest first.
func (s *Service) ListMatches(
	ctx context.Context,
	userID uint64,
	groupID *uint64,
	status *db.MatchStatus,
	pageToken *string,
	limit int,
) ([]db.Match, *string, error) {
	if userID == 0 {
		return nil, nil, svcErr.New(svcErr.KindInvalidArgument, "user id is required")
	}

	var (
		matches []db.Match
		next    *string
	)
	err := repository.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		matches, next, err = s.store.Matches.ListForUser(ctx, userID, groupID, status, pageToken, pageSize(limit))
		return err
	})
	return matches, next, err
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
