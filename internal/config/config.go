package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	App struct {
		ENV string
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		LogSQL   bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Addr string
	}

	NATS struct {
		URL           string
		SubjectPrefix string
	}

	Matching Matching
}

// Matching holds the business constants of the like/match subsystem.
// Each service receives its own copy at construction time.
type Matching struct {
	MaxDailyLikes   int
	MatchExpiryDays int
	LikeCooldown    time.Duration
	DayLocation     *time.Location
	DeletedNickname string
	SweepHour       int
	RecommendMax    int
}

// DefaultMatching returns the production defaults.
func DefaultMatching() Matching {
	return Matching{
		MaxDailyLikes:   20,
		MatchExpiryDays: 30,
		LikeCooldown:    14 * 24 * time.Hour,
		DayLocation:     time.Local,
		DeletedNickname: "deleted_user",
		SweepHour:       3,
		RecommendMax:    50,
	}
}

// MatchExpiry is MatchExpiryDays as a duration.
func (m Matching) MatchExpiry() time.Duration {
	return time.Duration(m.MatchExpiryDays) * 24 * time.Hour
}

// DayStart returns the start of the local day containing t.
func (m Matching) DayStart(t time.Time) time.Time {
	loc := m.DayLocation
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DayKey formats the local day containing t as YYYY-MM-DD.
func (m Matching) DayKey(t time.Time) string {
	return m.DayStart(t).Format(time.DateOnly)
}

func New() *Config {
	// .env is optional; real environment always wins
	_ = godotenv.Load()

	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "groupmatch")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.LogSQL = isTruthy(os.Getenv("DB_LOG_SQL"))
	cfg.DB.DSN = getEnvDefault("DB_DSN", os.Getenv("MYSQL_DSN"))
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "groupmatch")

		switch cfg.DB.Driver {
		case "postgres":
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.DSN = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
			)
		case "sqlite":
			cfg.DB.DSN = getEnvDefault("SQLITE_PATH", "groupmatch.db")
		default:
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Admin HTTP (metrics, health)
	cfg.HTTP.Addr = getEnvDefault("HTTP_ADDR", ":9090")

	// NATS; empty URL means notifications are only logged
	cfg.NATS.URL = getEnvDefault("NATS_URL", "")
	cfg.NATS.SubjectPrefix = getEnvDefault("NATS_SUBJECT_PREFIX", "groupmatch")

	// Matching rules
	m := DefaultMatching()
	m.MaxDailyLikes = getEnvInt("MAX_DAILY_LIKES", m.MaxDailyLikes)
	m.MatchExpiryDays = getEnvInt("MATCH_EXPIRY_DAYS", m.MatchExpiryDays)
	if v := getEnvDefault("LIKE_COOLDOWN", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			m.LikeCooldown = d
		}
	}
	if tz := getEnvDefault("LIKE_DAY_TZ", ""); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			m.DayLocation = loc
		}
	}
	m.DeletedNickname = getEnvDefault("DELETED_NICKNAME", m.DeletedNickname)
	m.SweepHour = getEnvInt("SWEEP_HOUR", m.SweepHour)
	m.RecommendMax = getEnvInt("RECOMMEND_MAX", m.RecommendMax)
	cfg.Matching = m

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
