package config

import (
	"log"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	// ChangeFeed selects how subscriptions learn about writes: "mongo" for
	// change streams, "redis" for pub/sub.
	ChangeFeed    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RebuildDebounce time.Duration
	StatusRefresh   string
	ReportLocation  *time.Location
	StreamKeepAlive time.Duration
}

const (
	FeedMongo = "mongo"
	FeedRedis = "redis"
)

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() Config {
	cfg := Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		MongoURI:  getEnvOrDefault("MONGO_URI", ""),
		DBName:    getEnvOrDefault("DB_NAME", "heremarket"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		ChangeFeed:    getEnvOrDefault("CHANGE_FEED", FeedMongo),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		RebuildDebounce: getDurationEnv("CUSTOMER_REBUILD_DEBOUNCE", 0, time.Millisecond),
		StatusRefresh:   getOptionalEnv("CUSTOMER_STATUS_REFRESH", "@hourly"),
		ReportLocation:  getLocationEnv("REPORT_TIMEZONE", time.UTC),
		StreamKeepAlive: getDurationEnv("STREAM_KEEPALIVE", 15, time.Second),
	}
	if cfg.ChangeFeed != FeedMongo && cfg.ChangeFeed != FeedRedis {
		log.Printf("[CONFIG] [WARN] unknown CHANGE_FEED %q, using %q", cfg.ChangeFeed, FeedMongo)
		cfg.ChangeFeed = FeedMongo
	}
	return cfg
}
