// Package testutil wires throwaway infrastructure for package tests:
// in-memory SQLite, miniredis and a few row builders.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/groupmatch/internal/cache"
	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/db"
)

// NewDB opens an isolated in-memory SQLite database with the full schema.
//
// The pool is capped at one connection: SQLite has no row locks, and a
// single connection makes concurrent transactions queue up instead of
// failing with "database is locked".
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewRedis starts a miniredis and returns a cache pointed at it.
func NewRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Client.Close() })
	return rc, mr
}

// UserOpt tweaks a user before insertion.
type UserOpt func(*db.User)

func WithCredits(n int) UserOpt { return func(u *db.User) { u.Credits = n } }
func Premium() UserOpt { return func(u *db.User) { u.IsPremium = true } }
func WithAge(age int) UserOpt { return func(u *db.User) { u.Age = &age } }
func WithoutAge() UserOpt { return func(u *db.User) { u.Age = nil } }
func WithNickname(n string) UserOpt { return func(u *db.User) { u.Nickname = n } }
func WithBio(b string) UserOpt { return func(u *db.User) { u.Bio = &b } }
func WithImage(url string) UserOpt { return func(u *db.User) { u.ProfileImage = &url } }
func ActiveAt(t time.Time) UserOpt { return func(u *db.User) { u.LastActive = t } }

// AddUser inserts a user with sane defaults (age 30, 5 credits).
func AddUser(t *testing.T, gdb *gorm.DB, id uint64, opts ...UserOpt) *db.User {
	t.Helper()

	age := 30
	gender := "female"
	if id%2 == 1 {
		gender = "male"
	}
	u := &db.User{
		ID:           id,
		Username:     fmt.Sprintf("user%d", id),
		PasswordHash: "x",
		Nickname:     fmt.Sprintf("member%d", id),
		Age:          &age,
		Gender:       &gender,
		Credits:      5,
		LastActive:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// AddGroup inserts a group and enrolls the given users as ACTIVE members.
func AddGroup(t *testing.T, gdb *gorm.DB, id uint64, members ...uint64) {
	t.Helper()

	require.NoError(t, gdb.Create(&db.Group{ID: id, Name: fmt.Sprintf("group-%d", id)}).Error)
	for _, uid := range members {
		AddMembership(t, gdb, uid, id, db.MembershipActive)
	}
}

// AddMembership inserts one membership row.
func AddMembership(t *testing.T, gdb *gorm.DB, userID, groupID uint64, status db.MembershipStatus) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.GroupMembership{UserID: userID, GroupID: groupID, Status: status}).Error)
}

// AddLike inserts a like row directly, bypassing every rule.
func AddLike(t *testing.T, gdb *gorm.DB, from, to, group uint64, at time.Time) *db.Like {
	t.Helper()

	like := &db.Like{FromUserID: from, ToUserID: to, GroupID: group, CreatedAt: at}
	require.NoError(t, gdb.Create(like).Error)
	return like
}

// AddMatch inserts a match row directly.
func AddMatch(t *testing.T, gdb *gorm.DB, a, b, group uint64, status db.MatchStatus, at time.Time) *db.Match {
	t.Helper()

	u1, u2 := db.Canonical(a, b)
	m := &db.Match{User1ID: u1, User2ID: u2, GroupID: group, Status: status, CreatedAt: at}
	if status != db.MatchDeleted {
		live := true
		m.Live = &live
	}
	require.NoError(t, gdb.Create(m).Error)
	return m
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
