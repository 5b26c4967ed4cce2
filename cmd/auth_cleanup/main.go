package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"finledger/internal/database"
	"finledger/internal/repository"
)

// Cron binary: prunes refresh tokens past their expiry and reset codes
// past their window. Revoked-but-unexpired tokens are kept so the
// revocation set stays authoritative for the whole token lifetime.
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

	tokens, err := repository.NewRefreshTokenRepository(db).DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("cleanup refresh_tokens failed: %v", err)
	}

	codes, err := repository.NewResetCodeRepository(db).DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("cleanup password_reset_codes failed: %v", err)
	}

	log.Printf("auth cleanup completed: refresh_tokens=%d password_reset_codes=%d", tokens, codes)
}
