package like_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/groupmatch/internal/app"
	"github.com/oggyb/groupmatch/internal/cache"
	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/db"
	svcErr "github.com/oggyb/groupmatch/internal/errors"
	"github.com/oggyb/groupmatch/internal/notify"
	"github.com/oggyb/groupmatch/internal/service/like"
	"github.com/oggyb/groupmatch/internal/testutil"
)

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

type env struct {
	svc   *like.Service
	db    *gorm.DB
	rec   *notify.Recorder
	clock *testutil.Clock
	cache *cache.RedisCache
	redis *miniredis.Miniredis
}

// setupService spins up an in-memory SQLite DB and a miniredis, and wires
// them into a like Service with a recording notifier and a fixed clock.
func setupService(t *testing.T, tweak ...func(*config.Matching)) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	rc, mr := testutil.NewRedis(t)

	cfg := &config.Config{Matching: config.DefaultMatching()}
	cfg.Matching.DayLocation = time.UTC
	for _, fn := range tweak {
		fn(&cfg.Matching)
	}

	rec := &notify.Recorder{}
	clock := &testutil.Clock{T: base}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(cfg, gdb, rc, rec, logger)
	appCtx.Clock = clock.Now

	return &env{svc: like.NewService(appCtx), db: gdb, rec: rec, clock: clock, cache: rc, redis: mr}
}

func (e *env) user(t *testing.T, id uint64) db.User {
	t.Helper()
	var u db.User
	require.NoError(t, e.db.First(&u, id).Error)
	return u
}

func (e *env) like(t *testing.T, from, to, group uint64) db.Like {
	t.Helper()
	var l db.Like
	require.NoError(t, e.db.Where("from_user_id = ? AND to_user_id = ? AND group_id = ?", from, to, group).First(&l).Error)
	return l
}

func (e *env) matches(t *testing.T) []db.Match {
	t.Helper()
	var ms []db.Match
	require.NoError(t, e.db.Order("id").Find(&ms).Error)
	return ms
}

func TestSendLike_MutualScenario(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1, testutil.WithCredits(5))
	testutil.AddUser(t, e.db, 2, testutil.WithCredits(5))
	testutil.AddGroup(t, e.db, 10, 1, 2)

	res, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)
	assert.False(t, res.IsMatch)
	assert.Nil(t, res.MatchID)
	assert.NotZero(t, res.LikeID)
	assert.Equal(t, 4, e.user(t, 1).Credits)
	assert.True(t, base.Equal(e.user(t, 1).LastActive), "sending stamps last_active")

	received := e.rec.OfKind(notify.KindLikeReceived)
	require.Len(t, received, 1)
	assert.Equal(t, uint64(2), received[0].UserID)
	assert.Equal(t, uint64(1), received[0].Payload.FromUserID)

	res, err = e.svc.SendLike(ctx, 2, 1, 10)
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	require.NotNil(t, res.MatchID)

	assert.True(t, e.like(t, 1, 2, 10).IsMatch)
	assert.True(t, e.like(t, 2, 1, 10).IsMatch)

	ms := e.matches(t)
	require.Len(t, ms, 1)
	assert.Equal(t, *res.MatchID, ms[0].ID)
	assert.Equal(t, db.MatchActive, ms[0].Status)
	assert.Equal(t, uint64(1), ms[0].User1ID)
	assert.Equal(t, uint64(2), ms[0].User2ID)

	created := e.rec.OfKind(notify.KindMatchCreated)
	require.Len(t, created, 2)
	got := map[uint64]uint64{}
	for _, in := range created {
		assert.Equal(t, ms[0].ID, in.Payload.MatchID)
		got[in.UserID] = in.Payload.CounterpartID
	}
	assert.Equal(t, map[uint64]uint64{1: 2, 2: 1}, got)

	// a match does not also announce a plain like
	assert.Len(t, e.rec.OfKind(notify.KindLikeReceived), 1)
}

func TestSendLike_NotInGroup(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1)
	testutil.AddUser(t, e.db, 2)
	testutil.AddUser(t, e.db, 3)
	testutil.AddGroup(t, e.db, 10, 1)
	testutil.AddMembership(t, e.db, 3, 10, db.MembershipLeft)

	_, err := e.svc.SendLike(ctx, 1, 2, 10)
	assert.ErrorIs(t, err, svcErr.ErrNotInGroup)

	_, err = e.svc.SendLike(ctx, 1, 3, 10)
	assert.ErrorIs(t, err, svcErr.ErrNotInGroup)

	_, err = e.svc.SendLike(ctx, 2, 1, 10)
	assert.ErrorIs(t, err, svcErr.ErrNotInGroup)

	// rejected sends cost nothing
	assert.Equal(t, 5, e.user(t, 1).Credits)
}

func TestSendLike_InvalidInput(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1)
	testutil.AddGroup(t, e.db, 10, 1)

	_, err := e.svc.SendLike(ctx, 1, 1, 10)
	kind, _ := svcErr.KindOf(err)
	assert.Equal(t, svcErr.KindInvalidArgument, kind)

	_, err = e.svc.SendLike(ctx, 1, 99, 10)
	assert.ErrorIs(t, err, svcErr.ErrUserNotFound)
}

func TestSendLike_Duplicate(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1)
	testutil.AddUser(t, e.db, 2)
	testutil.AddGroup(t, e.db, 10, 1, 2)

	_, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)

	// long after the cooldown the same group still refuses
	e.clock.Advance(30 * day)
	_, err = e.svc.SendLike(ctx, 1, 2, 10)
	assert.ErrorIs(t, err, svcErr.ErrDuplicateLike)
}

func TestSendLike_CooldownAcrossGroups(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1, testutil.WithCredits(10))
	testutil.AddUser(t, e.db, 2)
	testutil.AddGroup(t, e.db, 10, 1, 2)
	testutil.AddGroup(t, e.db, 20, 1, 2)
	testutil.AddGroup(t, e.db, 30, 1, 2)

	_, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)

	e.clock.Advance(day)
	_, err = e.svc.SendLike(ctx, 1, 2, 20)
	assert.ErrorIs(t, err, svcErr.ErrCooldownActive)

	e.clock.T = base.Add(14*day - time.Second)
	_, err = e.svc.SendLike(ctx, 1, 2, 20)
	assert.ErrorIs(t, err, svcErr.ErrCooldownActive)

	// exactly T+14d is allowed
	e.clock.T = base.Add(14 * day)
	_, err = e.svc.SendLike(ctx, 1, 2, 20)
	require.NoError(t, err)

	// and the window restarts from the newest like
	e.clock.Advance(day)
	_, err = e.svc.SendLike(ctx, 1, 2, 30)
	assert.ErrorIs(t, err, svcErr.ErrCooldownActive)
}

func TestSendLike_CreditConservation(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1, testutil.WithCredits(1))
	testutil.AddUser(t, e.db, 2)
	testutil.AddUser(t, e.db, 3)
	testutil.AddUser(t, e.db, 4, testutil.WithCredits(0), testutil.Premium())
	testutil.AddGroup(t, e.db, 10, 1, 2, 3, 4)

	_, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, e.user(t, 1).Credits)

	_, err = e.svc.SendLike(ctx, 1, 3, 10)
	assert.ErrorIs(t, err, svcErr.ErrInsufficientCredits)

	var n int64
	require.NoError(t, e.db.Model(&db.Like{}).Where("from_user_id = ?", 1).Count(&n).Error)
	assert.Equal(t, int64(1), n, "a refused like must not be recorded")

	// premium: free, balance untouched
	_, err = e.svc.SendLike(ctx, 4, 2, 10)
	require.NoError(t, err)
	_, err = e.svc.SendLike(ctx, 4, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, e.user(t, 4).Credits)
}

func TestSendLike_DailyCap(t *testing.T) {
	ctx := context.Background()
	e := setupService(t, func(m *config.Matching) { m.MaxDailyLikes = 3 })
	testutil.AddUser(t, e.db, 1, testutil.WithCredits(100))
	testutil.AddUser(t, e.db, 9, testutil.WithCredits(0), testutil.Premium())
	members := []uint64{1, 9}
	for id := uint64(2); id <= 7; id++ {
		testutil.AddUser(t, e.db, id)
		members = append(members, id)
	}
	testutil.AddGroup(t, e.db, 10, members...)

	for _, to := range []uint64{2, 3, 4} {
		_, err := e.svc.SendLike(ctx, 1, to, 10)
		require.NoError(t, err)
	}
	_, err := e.svc.SendLike(ctx, 1, 5, 10)
	assert.ErrorIs(t, err, svcErr.ErrDailyLimitExceeded)

	// still the same day
	e.clock.T = base.Add(11*time.Hour + 59*time.Minute)
	_, err = e.svc.SendLike(ctx, 1, 5, 10)
	assert.ErrorIs(t, err, svcErr.ErrDailyLimitExceeded)

	// midnight rollover
	e.clock.T = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	_, err = e.svc.SendLike(ctx, 1, 5, 10)
	require.NoError(t, err)

	// premium has no cap
	for to := uint64(2); to <= 7; to++ {
		_, err := e.svc.SendLike(ctx, 9, to, 10)
		require.NoError(t, err)
	}
}

func TestSendLike_WithdrawnLikesStillCountTowardCap(t *testing.T) {
	ctx := context.Background()
	e := setupService(t, func(m *config.Matching) { m.MaxDailyLikes = 3 })
	testutil.AddUser(t, e.db, 1, testutil.WithCredits(100))
	members := []uint64{1}
	for id := uint64(2); id <= 5; id++ {
		testutil.AddUser(t, e.db, id)
		members = append(members, id)
	}
	testutil.AddGroup(t, e.db, 10, members...)

	for _, to := range []uint64{2, 3, 4} {
		_, err := e.svc.SendLike(ctx, 1, to, 10)
		require.NoError(t, err)
		require.NoError(t, e.svc.UnlikeUser(ctx, 1, to, 10))
	}

	var n int64
	require.NoError(t, e.db.Model(&db.Like{}).Where("from_user_id = ?", 1).Count(&n).Error)
	require.Zero(t, n)

	_, err := e.svc.SendLike(ctx, 1, 5, 10)
	assert.ErrorIs(t, err, svcErr.ErrDailyLimitExceeded)

	c, err := e.svc.GetCredits(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, c.LikesSentToday)
	assert.Equal(t, 97, c.Credits)
}

func TestSendLike_NotificationFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	e.rec.Err = errors.New("push provider down")
	testutil.AddUser(t, e.db, 1)
	testutil.AddUser(t, e.db, 2)
	testutil.AddGroup(t, e.db, 10, 1, 2)

	res, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)
	assert.NotZero(t, res.LikeID)

	res, err = e.svc.SendLike(ctx, 2, 1, 10)
	require.NoError(t, err)
	assert.True(t, res.IsMatch)
	assert.Len(t, e.matches(t), 1)
}

func TestSendLike_ConcurrentReciprocalLikes(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1)
	testutil.AddUser(t, e.db, 2)
	testutil.AddGroup(t, e.db, 10, 1, 2)

	var (
		wg      sync.WaitGroup
		results = make([]*like.Result, 2)
		errs    = make([]error, 2)
	)
	pairs := [][2]uint64{{1, 2}, {2, 1}}
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, from, to uint64) {
			defer wg.Done()
			results[i], errs[i] = e.svc.SendLike(ctx, from, to, 10)
		}(i, p[0], p[1])
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, results[0].IsMatch, results[1].IsMatch, "exactly one side sees the match")

	assert.True(t, e.like(t, 1, 2, 10).IsMatch)
	assert.True(t, e.like(t, 2, 1, 10).IsMatch)
	ms := e.matches(t)
	require.Len(t, ms, 1)
	assert.Equal(t, db.MatchActive, ms[0].Status)
}

func TestUnlikeUser(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1)
	testutil.AddUser(t, e.db, 2)
	testutil.AddGroup(t, e.db, 10, 1, 2)

	err := e.svc.UnlikeUser(ctx, 1, 2, 10)
	assert.ErrorIs(t, err, svcErr.ErrLikeNotFound)

	_, err = e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)
	res, err := e.svc.SendLike(ctx, 2, 1, 10)
	require.NoError(t, err)
	require.True(t, res.IsMatch)

	require.NoError(t, e.svc.UnlikeUser(ctx, 1, 2, 10))

	var n int64
	require.NoError(t, e.db.Model(&db.Like{}).Where("from_user_id = ? AND to_user_id = ?", 1, 2).Count(&n).Error)
	assert.Zero(t, n)
	assert.False(t, e.like(t, 2, 1, 10).IsMatch)

	ms := e.matches(t)
	require.Len(t, ms, 1)
	assert.Equal(t, db.MatchDeleted, ms[0].Status)
	assert.Nil(t, ms[0].Live)
	require.NotNil(t, ms[0].EndedBy)
	assert.Equal(t, uint64(1), *ms[0].EndedBy)

	// no refund
	assert.Equal(t, 4, e.user(t, 1).Credits)

	err = e.svc.UnlikeUser(ctx, 1, 2, 10)
	assert.ErrorIs(t, err, svcErr.ErrLikeNotFound)
}

func TestUnlikeThenRematch(t *testing.T) {
	ctx := context.Background()
	e := setupService(t, func(m *config.Matching) { m.LikeCooldown = time.Hour })
	testutil.AddUser(t, e.db, 1)
	testutil.AddUser(t, e.db, 2)
	testutil.AddGroup(t, e.db, 10, 1, 2)

	_, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)
	_, err = e.svc.SendLike(ctx, 2, 1, 10)
	require.NoError(t, err)
	require.NoError(t, e.svc.UnlikeUser(ctx, 1, 2, 10))

	e.clock.Advance(2 * time.Hour)
	res, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)
	assert.True(t, res.IsMatch)

	ms := e.matches(t)
	require.Len(t, ms, 2)
	assert.Equal(t, db.MatchDeleted, ms[0].Status)
	assert.Equal(t, db.MatchActive, ms[1].Status)
}

func TestCountLikesReceived_CacheFirst(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1)
	testutil.AddUser(t, e.db, 2)
	testutil.AddUser(t, e.db, 3)
	testutil.AddGroup(t, e.db, 10, 1, 2, 3)

	_, err := e.svc.SendLike(ctx, 2, 1, 10)
	require.NoError(t, err)

	n, err := e.svc.CountLikesReceived(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, e.redis.Exists(e.cache.KeyForLikeCount(1)))

	// served from cache
	require.NoError(t, e.redis.Set(e.cache.KeyForLikeCount(1), "41"))
	n, err = e.svc.CountLikesReceived(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(41), n)

	// a new like invalidates the counter
	_, err = e.svc.SendLike(ctx, 3, 1, 10)
	require.NoError(t, err)
	n, err = e.svc.CountLikesReceived(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// answering a like removes it from the pending count
	_, err = e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)
	n, err = e.svc.CountLikesReceived(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListLikesReceived(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1)
	for id := uint64(2); id <= 5; id++ {
		testutil.AddUser(t, e.db, id)
	}
	testutil.AddGroup(t, e.db, 10, 1, 2, 3, 4, 5)

	for _, from := range []uint64{2, 3, 4, 5} {
		_, err := e.svc.SendLike(ctx, from, 1, 10)
		require.NoError(t, err)
		e.clock.Advance(time.Minute)
	}
	// user 1 answers user 3 → no longer pending
	_, err := e.svc.SendLike(ctx, 1, 3, 10)
	require.NoError(t, err)

	page1, next, err := e.svc.ListLikesReceived(ctx, 1, nil, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, uint64(5), page1[0].FromUserID)
	assert.Equal(t, uint64(4), page1[1].FromUserID)

	page2, next, err := e.svc.ListLikesReceived(ctx, 1, nil, next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Nil(t, next)
	assert.Equal(t, uint64(2), page2[0].FromUserID)

	bad := "garbage!"
	_, _, err = e.svc.ListLikesReceived(ctx, 1, nil, &bad, 2)
	assert.Error(t, err)
}

func TestGetCredits(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	testutil.AddUser(t, e.db, 1, testutil.WithCredits(3))
	testutil.AddUser(t, e.db, 2)
	testutil.AddUser(t, e.db, 3, testutil.Premium())
	testutil.AddGroup(t, e.db, 10, 1, 2, 3)

	_, err := e.svc.SendLike(ctx, 1, 2, 10)
	require.NoError(t, err)

	c, err := e.svc.GetCredits(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Credits)
	assert.False(t, c.IsPremium)
	assert.Equal(t, 1, c.LikesSentToday)
	assert.Equal(t, 20, c.DailyLimit)

	c, err = e.svc.GetCredits(ctx, 3)
	require.NoError(t, err)
	assert.True(t, c.IsPremium)
	assert.Zero(t, c.DailyLimit)

	_, err = e.svc.GetCredits(ctx, 404)
	assert.ErrorIs(t, err, svcErr.ErrUserNotFound)
}
