package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	RoomTTL        time.Duration
	SweepInterval  time.Duration
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.AllowedOrigins = splitOrigins(getenv("ALLOWED_ORIGINS", "*"))
	c.RoomTTL = getduration("ROOM_TTL", 10*time.Minute)
	c.SweepInterval = getduration("SWEEP_INTERVAL", time.Minute)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
