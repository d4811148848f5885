package db

import (
	"time"
)

// User table
//
// Credits, LastActive and the daily sent counter are mutated by the like
// subsystem; users are never hard-deleted, a removed account keeps its row
// with the sentinel nickname.
//
// SentCount is the number of likes sent on SentDay (YYYY-MM-DD in the
// configured day location). It survives unlike, so withdrawn likes still
// count toward the daily cap.
type User struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement"`
	Username     string  `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	Nickname     string  `gorm:"size:64;not null"`
	Bio          *string `gorm:"type:text"`
	ProfileImage *string `gorm:"size:512"`
	Age          *int
	Gender       *string   `gorm:"size:16"`
	Credits      int       `gorm:"not null;default:0"`
	IsPremium    bool      `gorm:"not null;default:false"`
	SentDay      string    `gorm:"size:10;not null;default:''"`
	SentCount    int       `gorm:"not null;default:0"`
	LastActive   time.Time `gorm:"index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// SentOn returns how many likes the user sent on day.
func (u *User) SentOn(day string) int {
	if u.SentDay != day {
		return 0
	}
	return u.SentCount
}

// Group is the scope likes and matches live in.
type Group struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName avoids GROUPS, a reserved word in MySQL 8.
func (Group) TableName() string { return "member_groups" }

// MembershipStatus values; only ACTIVE members may like or be recommended.
type MembershipStatus string

const (
	MembershipActive MembershipStatus = "ACTIVE"
	MembershipLeft   MembershipStatus = "LEFT"
	MembershipBanned MembershipStatus = "BANNED"
)

// GroupMembership gates eligibility inside a group.
//
// Indexes:
//   - ux_membership_user_group(user_id, group_id): one row per user and group.
//   - idx_membership_lookup(user_id, group_id, status): membership checks.
//   - idx_membership_group_status(group_id, status): candidate pools.
type GroupMembership struct {
	ID       uint64           `gorm:"primaryKey;autoIncrement"`
	UserID   uint64           `gorm:"not null;uniqueIndex:ux_membership_user_group,priority:1;index:idx_membership_lookup,priority:1"`
	GroupID  uint64           `gorm:"not null;uniqueIndex:ux_membership_user_group,priority:2;index:idx_membership_lookup,priority:2;index:idx_membership_group_status,priority:1"`
	Status   MembershipStatus `gorm:"size:16;not null;index:idx_membership_lookup,priority:3;index:idx_membership_group_status,priority:2"`
	JoinedAt time.Time        `gorm:"autoCreateTime"`
}

// Like is a directed edge from one user to another inside a group.
//
// Indexes:
//   - ux_like_from_to_group(from_user_id, to_user_id, group_id): at most one like per ordered triple.
//   - idx_like_cooldown(from_user_id, to_user_id, created_at): cross-group cooldown lookups.
//   - idx_like_to_group(to_user_id, group_id): "who liked me" lists.
type Like struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	FromUserID uint64    `gorm:"not null;uniqueIndex:ux_like_from_to_group,priority:1;index:idx_like_cooldown,priority:1"`
	ToUserID   uint64    `gorm:"not null;uniqueIndex:ux_like_from_to_group,priority:2;index:idx_like_cooldown,priority:2;index:idx_like_to_group,priority:1"`
	GroupID    uint64    `gorm:"not null;uniqueIndex:ux_like_from_to_group,priority:3;index:idx_like_to_group,priority:2"`
	IsMatch    bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null;index:idx_like_cooldown,priority:3"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchActive  MatchStatus = "ACTIVE"
	MatchExpired MatchStatus = "EXPIRED"
	MatchDeleted MatchStatus = "DELETED"
)

// Match is the undirected relationship created from a reciprocal like pair.
//
// User1ID < User2ID always holds. Live is true while the match is not
// DELETED and NULL afterwards, so ux_match_pair_live allows any number of
// deleted rows but only one live row per canonical pair and group.
//
// Indexes:
//   - ux_match_pair_live(user1_id, user2_id, group_id, live)
//   - idx_match_status_created(status, created_at): expiry sweep.
type Match struct {
	ID        uint64      `gorm:"primaryKey;autoIncrement"`
	User1ID   uint64      `gorm:"not null;uniqueIndex:ux_match_pair_live,priority:1;index:idx_match_user1"`
	User2ID   uint64      `gorm:"not null;uniqueIndex:ux_match_pair_live,priority:2;index:idx_match_user2"`
	GroupID   uint64      `gorm:"not null;uniqueIndex:ux_match_pair_live,priority:3"`
	Live      *bool       `gorm:"uniqueIndex:ux_match_pair_live,priority:4"`
	Status    MatchStatus `gorm:"size:16;not null;index:idx_match_status_created,priority:1"`
	EndedBy   *uint64
	EndedAt   *time.Time
	CreatedAt time.Time `gorm:"not null;index:idx_match_status_created,priority:2"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Counterpart returns the other participant, or 0 if userID is not part of the match.
func (m *Match) Counterpart(userID uint64) uint64 {
	switch userID {
	case m.User1ID:
		return m.User2ID
	case m.User2ID:
		return m.User1ID
	}
	return 0
}

// HasParticipant reports whether userID is one of the two users.
func (m *Match) HasParticipant(userID uint64) bool {
	return userID != 0 && (userID == m.User1ID || userID == m.User2ID)
}

// Message rows are written by the chat collaborator. The matching core only
// counts them to keep conversations from expiring.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	MatchID   uint64    `gorm:"not null;index"`
	SenderID  uint64    `gorm:"not null"`
	Body      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// MatchReport is the moderation record written by reportMatch.
type MatchReport struct {
	ID          string    `gorm:"primaryKey;size:36"`
	MatchID     uint64    `gorm:"not null;index"`
	ReporterID  uint64    `gorm:"not null;index"`
	Reason      string    `gorm:"size:64;not null"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&Group{},
		&GroupMembership{},
		&Like{},
		&Match{},
		&Message{},
		&MatchReport{},
	}
}

// Canonical orders a pair so that the smaller id comes first.
func Canonical(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}
