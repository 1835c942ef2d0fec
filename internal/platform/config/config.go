package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration so main stays lean. Persistence
// selection is positional: an empty DatabaseURL runs everything in memory
// (dev/tests), a RedisURL moves session storage to Redis.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	SendQueueSize int
	SeedDemo      bool
}

// FromEnv builds a Server config from the environment, loading a local .env
// first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	addr := os.Getenv("PLENUM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	queueSize := 64
	if raw := os.Getenv("PLENUM_SEND_QUEUE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			queueSize = n
		}
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SendQueueSize: queueSize,
		SeedDemo:      os.Getenv("PLENUM_SEED_DEMO") == "true",
	}
}
