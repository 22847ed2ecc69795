package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"wastetrack/internal/database"
	"wastetrack/internal/repository"
)

// attemptRetention is how long the login attempt trail is kept. Old rows
// have no security value once far outside every lockout window.
const attemptRetention = 30 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()

	sessions, err := repository.NewSessionRepository(db).DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("cleanup sessions failed: %v", err)
	}

	attempts, err := repository.NewLoginAttemptRepository(db).PurgeBefore(ctx, time.Now().Add(-attemptRetention))
	if err != nil {
		log.Fatalf("cleanup login_attempts failed: %v", err)
	}

	counters, err := repository.NewRateLimitRepository(db).DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("cleanup rate_limit_counters failed: %v", err)
	}

	log.Printf("auth cleanup completed: sessions=%d login_attempts=%d rate_limit_counters=%d",
		sessions, attempts, counters)
}
