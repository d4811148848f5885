package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/groupmatch/internal/db"
)

// UserRepository reads users and mutates the fields the like subsystem owns
// (credits, last_active, the daily sent counter).
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Get returns the user or gorm.ErrRecordNotFound.
func (r *UserRepository) Get(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// LockPair loads both users with SELECT ... FOR UPDATE, always in ascending
// id order so two transactions locking the same pair cannot deadlock.
//
// Behavior:
//   - Missing users are simply absent from the returned map.
//   - On SQLite the locking clause is dropped by the dialect; the database
//     lock taken by the write transaction serializes instead.
//
// Example:
//
//	users, _ := repo.LockPair(ctx, 7, 3) // locks 3 then 7
func (r *UserRepository) LockPair(ctx context.Context, a, b uint64) (map[uint64]*db.User, error) {
	lo, hi := db.Canonical(a, b)

	var users []db.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", []uint64{lo, hi}).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint64]*db.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// ChargeLike deducts cost credits, stamps last_active and bumps the sent
// counter for day in one conditional UPDATE. It returns false when the
// balance was too low, so a concurrent spend can never take credits below
// zero.
//
// Behavior:
//   - sent_count restarts at 1 when sent_day is not day.
//   - Updates are applied in column order and sent_count sorts before
//     sent_day, so the CASE sees the old day on MySQL too.
func (r *UserRepository) ChargeLike(ctx context.Context, id uint64, cost int, day string, now time.Time) (bool, error) {
	updates := map[string]any{
		"last_active": now,
		"sent_count":  gorm.Expr("CASE WHEN sent_day = ? THEN sent_count + 1 ELSE 1 END", day),
		"sent_day":    day,
	}
	q := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id)
	if cost > 0 {
		updates["credits"] = gorm.Expr("credits - ?", cost)
		q = q.Where("credits >= ?", cost)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if cost > 0 && res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// Candidates returns the discovery pool for requesterID inside groupID.
//
// Behavior:
//   - Only ACTIVE members of the group.
//   - Excludes the requester and anyone the requester ever liked, in any group.
//   - Excludes users with unknown age or gender, and the deleted-account nickname.
//
// Example:
//
//	repo.Candidates(ctx, 42, 1, "deleted_user")
func (r *UserRepository) Candidates(
	ctx context.Context,
	requesterID, groupID uint64,
	deletedNickname string,
) ([]db.User, error) {
	likedSubQuery := r.db.
		Table("likes l").
		Select("1").
		Where("l.from_user_id = ? AND l.to_user_id = u.id", requesterID)

	var users []db.User
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.*").
		Joins("JOIN group_memberships gm ON gm.user_id = u.id").
		Where("gm.group_id = ? AND gm.status = ?", groupID, db.MembershipActive).
		Where("u.id <> ?", requesterID).
		Where("u.age IS NOT NULL AND u.gender IS NOT NULL").
		Where("u.nickname <> ?", deletedNickname).
		Where("NOT EXISTS (?)", likedSubQuery).
		Order("u.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// IsNotFound reports whether err is a missing-row error from this package.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
