package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/groupmatch/internal/db"
	"github.com/oggyb/groupmatch/internal/utils/pagination"
)

// LikeRepository provides data access methods for the Like model.
// It encapsulates all queries related to directed likes between users.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Create inserts a new like. A concurrent insert of the same
// (from, to, group) triple fails with gorm.ErrDuplicatedKey.
func (r *LikeRepository) Create(ctx context.Context, like *db.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// Get returns the like for the ordered triple or gorm.ErrRecordNotFound.
func (r *LikeRepository) Get(ctx context.Context, fromUserID, toUserID, groupID uint64) (*db.Like, error) {
	return r.get(ctx, r.db, fromUserID, toUserID, groupID)
}

// GetForUpdate is Get with a row lock, used for the reciprocity re-check.
func (r *LikeRepository) GetForUpdate(ctx context.Context, fromUserID, toUserID, groupID uint64) (*db.Like, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), fromUserID, toUserID, groupID)
}

func (r *LikeRepository) get(ctx context.Context, q *gorm.DB, fromUserID, toUserID, groupID uint64) (*db.Like, error) {
	var like db.Like
	err := q.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ? AND group_id = ?", fromUserID, toUserID, groupID).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Exists checks whether the ordered triple already has a like.
func (r *LikeRepository) Exists(ctx context.Context, fromUserID, toUserID, groupID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ? AND group_id = ?", fromUserID, toUserID, groupID).
		Count(&count).Error
	return count > 0, err
}

// LastLikeAt returns when fromUserID last liked toUserID in any group,
// or nil if never.
func (r *LikeRepository) LastLikeAt(ctx context.Context, fromUserID, toUserID uint64) (*time.Time, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Order("created_at DESC").
		Limit(1).
		Find(&likes).Error
	if err != nil || len(likes) == 0 {
		return nil, err
	}
	return &likes[0].CreatedAt, nil
}

// SetMatch flips is_match on a single like.
func (r *LikeRepository) SetMatch(ctx context.Context, likeID uint64, isMatch bool) error {
	return r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("id = ?", likeID).
		Update("is_match", isMatch).Error
}

// ClearPair clears is_match on both directions of a pair inside a group.
// The like rows stay, keeping cooldown and dedup history.
func (r *LikeRepository) ClearPair(ctx context.Context, userA, userB, groupID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("group_id = ?", groupID).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Update("is_match", false).Error
}

// Delete removes a like row.
func (r *LikeRepository) Delete(ctx context.Context, likeID uint64) error {
	return r.db.WithContext(ctx).Delete(&db.Like{}, likeID).Error
}

// receivedQuery selects likes to recipientID that were not answered with
// a like back in the same group.
func (r *LikeRepository) receivedQuery(ctx context.Context, recipientID uint64, groupID *uint64) *gorm.DB {
	// subquery to exclude reciprocated likes
	subQuery := r.db.
		Table("likes l2").
		Select("1").
		Where("l2.from_user_id = l.to_user_id AND l2.to_user_id = l.from_user_id AND l2.group_id = l.group_id")

	q := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ? AND NOT EXISTS (?)", recipientID, subQuery)
	if groupID != nil {
		q = q.Where("l.group_id = ?", *groupID)
	}
	return q
}

// ListReceived returns likes the recipient has not answered yet.
//
// Behavior:
//   - Only likes where to_user_id = X and no like back exists in that group.
//   - Optional group filter.
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListReceived(ctx, 42, nil, nil, 20) // first 20 pending likes for user 42
func (r *LikeRepository) ListReceived(
	ctx context.Context,
	recipientID uint64,
	groupID *uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	var likes []db.Like

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.receivedQuery(ctx, recipientID, groupID).
		Select("l.*").
		Order("l.created_at DESC, l.id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountReceived returns how many unanswered likes the recipient has across
// all groups. Used in conjunction with Redis cache (DB is fallback).
func (r *LikeRepository) CountReceived(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.receivedQuery(ctx, recipientID, nil).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
