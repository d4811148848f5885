package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/groupmatch/internal/db"
	"github.com/oggyb/groupmatch/internal/utils/pagination"
)

// MatchRepository provides data access methods for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateIfAbsent inserts a match unless the pair already holds its live
// slot in the group. It reports whether the row was inserted; losing the
// race is not an error.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, m *db.Match) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Get returns the match or gorm.ErrRecordNotFound.
func (r *MatchRepository) Get(ctx context.Context, id uint64) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetForUpdate is Get with a row lock.
func (r *MatchRepository) GetForUpdate(ctx context.Context, id uint64) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindLive returns the non-deleted (ACTIVE or EXPIRED) match of a canonical
// pair in a group, or gorm.ErrRecordNotFound.
func (r *MatchRepository) FindLive(ctx context.Context, user1ID, user2ID, groupID uint64) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user1_id = ? AND user2_id = ? AND group_id = ? AND live = ?", user1ID, user2ID, groupID, true).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Reactivate turns an EXPIRED match back to ACTIVE. created_at restarts so
// the expiry window counts from the new match.
func (r *MatchRepository) Reactivate(ctx context.Context, id uint64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ? AND status = ?", id, db.MatchExpired).
		Updates(map[string]any{
			"status":     db.MatchActive,
			"created_at": now,
			"ended_at":   nil,
		}).Error
}

// MarkDeleted moves a match to DELETED and frees the pair's live slot.
// It returns false if the match was already DELETED.
func (r *MatchRepository) MarkDeleted(ctx context.Context, id uint64, endedBy *uint64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ? AND status <> ?", id, db.MatchDeleted).
		Updates(map[string]any{
			"status":   db.MatchDeleted,
			"live":     nil,
			"ended_by": endedBy,
			"ended_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

// ExpireStale transitions every ACTIVE match created before cutoff that has
// no messages to EXPIRED.
//
// Behavior:
//   - One conditional UPDATE; no rows are read first, so a message written
//     concurrently either lands before the statement (match stays ACTIVE)
//     or after it (match already EXPIRED).
//   - Returns the number of transitioned rows.
//
// Example:
//
//	repo.ExpireStale(ctx, now.Add(-30*24*time.Hour), now)
func (r *MatchRepository) ExpireStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("status = ? AND created_at < ?", db.MatchActive, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM messages msg WHERE msg.match_id = matches.id)").
		Updates(map[string]any{
			"status":   db.MatchExpired,
			"ended_at": now,
		})
	return res.RowsAffected, res.Error
}

// ListForUser returns matches userID participates in.
//
// Behavior:
//   - Optional group and status filters; without a status filter DELETED
//     matches are left out.
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination.
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID uint64,
	groupID *uint64,
	status *db.MatchStatus,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	var matches []db.Match

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("(user1_id = ? OR user2_id = ?)", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	} else {
		query = query.Where("status <> ?", db.MatchDeleted)
	}

	// apply cursor
	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		matches = matches[:limit]
	}

	return matches, nextToken, nil
}
