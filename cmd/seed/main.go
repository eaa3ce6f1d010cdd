// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	apikeyrepo "account-security-core/internal/apikey/repository"
	apikeyservice "account-security-core/internal/apikey/service"
	"account-security-core/internal/config"
	"account-security-core/internal/db"
	"account-security-core/internal/security"
	userdomain "account-security-core/internal/user/domain"
	userrepo "account-security-core/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "Password123!dev"
	devKeyName   = "dev-key"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	passwordHash, err := hasher.Hash(ctx, []byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        devUserEmail,
		PasswordHash: passwordHash,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	keys := apikeyservice.NewAPIKeyService(apikeyrepo.NewPostgresRepository(conn), logger)
	created, err := keys.Create(ctx, user.ID, devKeyName, []string{"read", "write"}, nil)
	if err != nil {
		log.Fatalf("create dev api key: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
	fmt.Printf("Dev API key (shown once): %s\n", created.Plaintext)
}
