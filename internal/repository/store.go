package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles every repository over one gorm handle. A Store built from
// a transaction handle scopes all of its repositories to that transaction.
type Store struct {
	db *gorm.DB

	Users       *UserRepository
	Memberships *MembershipRepository
	Likes       *LikeRepository
	Matches     *MatchRepository
	Messages    *MessageRepository
	Reports     *ReportRepository
}

// NewStore creates a Store bound to the given DB connection.
func NewStore(database *gorm.DB) *Store {
	return &Store{
		db:          database,
		Users:       NewUserRepository(database),
		Memberships: NewMembershipRepository(database),
		Likes:       NewLikeRepository(database),
		Matches:     NewMatchRepository(database),
		Messages:    NewMessageRepository(database),
		Reports:     NewReportRepository(database),
	}
}

// InTx runs fn inside a single database transaction.
//
// Behavior:
//   - fn receives a Store whose repositories all use the transaction.
//   - Returning an error (or panicking) rolls everything back.
//   - Nested calls on a tx-scoped Store become savepoints.
//
// fn must not touch the outer Store; on single-connection pools that
// would block forever.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
