package match

import (
	"context"
	"time"

	"github.com/oggyb/groupmatch/internal/db"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
	"github.com/oggyb/groupmatch/internal/notify"
	"github.com/oggyb/groupmatch/internal/repository"
)

// CreateInTx is the match factory. It must run inside the caller's
// transaction; the like registry calls it while it still holds the pair's
// locks.
//
// Behavior:
//   - Canonicalizes the pair (user1 < user2).
//   - ACTIVE match already there: returned as is, created=false.
//   - EXPIRED match there: reactivated, created=true.
//   - Otherwise inserts. If a concurrent transaction won the insert, its
//     row is returned, created=false.
//   - On created=true, queues MATCH_CREATED for both participants.
func CreateInTx(
	ctx context.Context,
	tx *repository.Store,
	userA, userB, groupID uint64,
	now time.Time,
	box *notify.Outbox,
) (*db.Match, bool, error) {
	u1, u2 := db.Canonical(userA, userB)

	existing, err := tx.Matches.FindLive(ctx, u1, u2, groupID)
	switch {
	case err == nil && existing.Status == db.MatchActive:
		return existing, false, nil

	case err == nil:
		if err := tx.Matches.Reactivate(ctx, existing.ID, now); err != nil {
			return nil, false, err
		}
		existing.Status = db.MatchActive
		existing.CreatedAt = now
		existing.EndedAt = nil
		queueCreated(box, existing, now)
		return existing, true, nil

	case !repository.IsNotFound(err):
		return nil, false, err
	}

	live := true
	m := &db.Match{
		User1ID:   u1,
		User2ID:   u2,
		GroupID:   groupID,
		Live:      &live,
		Status:    db.MatchActive,
		CreatedAt: now,
	}
	inserted, err := tx.Matches.CreateIfAbsent(ctx, m)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		// lost the race; the winner's row is the match
		winner, err := tx.Matches.FindLive(ctx, u1, u2, groupID)
		if err != nil {
			return nil, false, err
		}
		return winner, false, nil
	}

	queueCreated(box, m, now)
	return m, true, nil
}

func queueCreated(box *notify.Outbox, m *db.Match, now time.Time) {
	if box == nil {
		return
	}
	for _, uid := range []uint64{m.User1ID, m.User2ID} {
		box.Add(notify.NewIntent(uid, notify.KindMatchCreated, notify.Payload{
			GroupID:       m.GroupID,
			MatchID:       m.ID,
			CounterpartID: m.Counterpart(uid),
		}, now))
	}
}

// endMatch moves a match to DELETED on behalf of requesterID and clears
// the is_match flag on both likes of the pair. deleted is false when the
// match was already DELETED.
func endMatch(ctx context.Context, tx *repository.Store, matchID, requesterID uint64, now time.Time) (*db.Match, bool, error) {
	m, err := tx.Matches.GetForUpdate(ctx, matchID)
	if repository.IsNotFound(err) {
		return nil, false, svcErr.ErrMatchNotFound
	}
	if err != nil {
		return nil, false, err
	}
	if !m.HasParticipant(requesterID) {
		return nil, false, svcErr.ErrForbidden
	}
	if m.Status == db.MatchDeleted {
		return m, false, nil
	}

	if _, err := tx.Matches.MarkDeleted(ctx, m.ID, &requesterID, now); err != nil {
		return nil, false, err
	}
	if err := tx.Likes.ClearPair(ctx, m.User1ID, m.User2ID, m.GroupID); err != nil {
		return nil, false, err
	}

	m.Status = db.MatchDeleted
	m.Live = nil
	m.EndedBy = &requesterID
	m.EndedAt = &now
	return m, true, nil
}

// EndInTx is endMatch for callers that already hold a transaction, such as
// unlike. It skips the participant check.
func EndInTx(ctx context.Context, tx *repository.Store, m *db.Match, endedBy uint64, now time.Time) (bool, error) {
	ok, err := tx.Matches.MarkDeleted(ctx, m.ID, &endedBy, now)
	if err != nil || !ok {
		return false, err
	}
	return true, tx.Likes.ClearPair(ctx, m.User1ID, m.User2ID, m.GroupID)
}
