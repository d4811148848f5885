package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/groupmatch/internal/db"
)

// MembershipRepository answers group-membership questions. Group management
// itself lives elsewhere.
type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(database *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: database}
}

// IsActiveMember reports whether userID is an ACTIVE member of groupID.
func (r *MembershipRepository) IsActiveMember(ctx context.Context, userID, groupID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.GroupMembership{}).
		Where("user_id = ? AND group_id = ? AND status = ?", userID, groupID, db.MembershipActive).
		Count(&count).Error
	return count > 0, err
}
