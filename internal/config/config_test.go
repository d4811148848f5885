package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_DRIVER", "")

	cfg := New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/groupmatch")
	assert.Equal(t, 20, cfg.Matching.MaxDailyLikes)
	assert.Equal(t, 30, cfg.Matching.MatchExpiryDays)
	assert.Equal(t, 14*24*time.Hour, cfg.Matching.LikeCooldown)
	assert.Equal(t, "deleted_user", cfg.Matching.DeletedNickname)
}

func TestNew_MatchingOverrides(t *testing.T) {
	t.Setenv("MAX_DAILY_LIKES", "5")
	t.Setenv("MATCH_EXPIRY_DAYS", "7")
	t.Setenv("LIKE_COOLDOWN", "48h")
	t.Setenv("LIKE_DAY_TZ", "UTC")
	t.Setenv("DELETED_NICKNAME", "gone")

	cfg := New()

	assert.Equal(t, 5, cfg.Matching.MaxDailyLikes)
	assert.Equal(t, 7, cfg.Matching.MatchExpiryDays)
	assert.Equal(t, 48*time.Hour, cfg.Matching.LikeCooldown)
	assert.Equal(t, "UTC", cfg.Matching.DayLocation.String())
	assert.Equal(t, "gone", cfg.Matching.DeletedNickname)
	assert.Equal(t, 7*24*time.Hour, cfg.Matching.MatchExpiry())
}

func TestNew_PostgresDSN(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "pg")

	cfg := New()

	assert.Contains(t, cfg.DB.DSN, "host=pg port=5432")
}

func TestNew_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_DAILY_LIKES", "lots")
	t.Setenv("LIKE_COOLDOWN", "soon")
	t.Setenv("LIKE_DAY_TZ", "Nowhere/Land")

	cfg := New()

	assert.Equal(t, 20, cfg.Matching.MaxDailyLikes)
	assert.Equal(t, 14*24*time.Hour, cfg.Matching.LikeCooldown)
	assert.Equal(t, time.Local, cfg.Matching.DayLocation)
}

func TestDayStart(t *testing.T) {
	m := DefaultMatching()
	m.DayLocation = time.UTC

	ts := time.Date(2026, 3, 4, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), m.DayStart(ts))

	seoul := time.FixedZone("KST", 9*3600)
	m.DayLocation = seoul
	// 17:45 UTC is 02:45 next day in KST
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, seoul), m.DayStart(ts))
	assert.Equal(t, "2026-03-05", m.DayKey(ts))
}
