package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/groupmatch/internal/db"
)

// MessageRepository is read-mostly for this service; chat owns the writes.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Create stores a message. Used by seeding and tests.
func (r *MessageRepository) Create(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ReportRepository stores moderation reports.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{db: database}
}

func (r *ReportRepository) Create(ctx context.Context, report *db.MatchReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListForMatch returns reports filed against a match, oldest first.
func (r *ReportRepository) ListForMatch(ctx context.Context, matchID uint64) ([]db.MatchReport, error) {
	var reports []db.MatchReport
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC").
		Find(&reports).Error
	return reports, err
}
