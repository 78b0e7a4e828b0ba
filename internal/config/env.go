package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getOptionalEnv distinguishes an unset key, which yields defaultValue, from
// one set to the empty string, which disables the setting.
func getOptionalEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// getDurationEnv reads a whole number of units. Go duration strings such as
// "1m30s" are accepted as well.
func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return time.Duration(parsed) * unit
		}
		if parsed, err := time.ParseDuration(value); err == nil && parsed >= 0 {
			return parsed
		}
		log.Printf("[CONFIG] [WARN] invalid %s %q, using default", key, value)
	}
	return time.Duration(defaultValue) * unit
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("[CONFIG] [WARN] invalid %s %q, using default", key, value)
	}
	return defaultValue
}

func getLocationEnv(key string, defaultValue *time.Location) *time.Location {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		loc, err := time.LoadLocation(value)
		if err == nil {
			return loc
		}
		log.Printf("[CONFIG] [WARN] invalid %s %q: %v", key, value, err)
	}
	return defaultValue
}
