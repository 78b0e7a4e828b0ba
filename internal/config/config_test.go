package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_NAME", "CHANGE_FEED", "REDIS_DB", "CUSTOMER_REBUILD_DEBOUNCE", "REPORT_TIMEZONE", "STREAM_KEEPALIVE"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "heremarket", cfg.DBName)
	assert.Equal(t, FeedMongo, cfg.ChangeFeed)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Zero(t, cfg.RebuildDebounce)
	assert.Equal(t, time.UTC, cfg.ReportLocation)
	assert.Equal(t, 15*time.Second, cfg.StreamKeepAlive)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHANGE_FEED", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CUSTOMER_REBUILD_DEBOUNCE", "250")
	t.Setenv("CUSTOMER_STATUS_REFRESH", "")
	t.Setenv("REPORT_TIMEZONE", "Europe/Istanbul")
	t.Setenv("STREAM_KEEPALIVE", "1m")

	cfg := FromEnv()
	assert.Equal(t, FeedRedis, cfg.ChangeFeed)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 250*time.Millisecond, cfg.RebuildDebounce)
	assert.Empty(t, cfg.StatusRefresh, "an empty schedule disables the refresh")
	assert.Equal(t, "Europe/Istanbul", cfg.ReportLocation.String())
	assert.Equal(t, time.Minute, cfg.StreamKeepAlive)
}

func TestFromEnvRejectsUnknownFeed(t *testing.T) {
	t.Setenv("CHANGE_FEED", "kafka")
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")

	cfg := FromEnv()
	assert.Equal(t, FeedMongo, cfg.ChangeFeed)
	assert.Equal(t, time.UTC, cfg.ReportLocation)
}
