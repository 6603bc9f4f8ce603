// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev admin (admin@campus.edu) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"campus-dispatch/internal/config"
	"campus-dispatch/internal/db"
	"campus-dispatch/internal/directory"
	"campus-dispatch/internal/geo"
	identitydomain "campus-dispatch/internal/identity/domain"
	identityrepo "campus-dispatch/internal/identity/repository"
	"campus-dispatch/internal/security"
)

const (
	adminEmail     = "admin@campus.edu"
	moderatorEmail = "moderator@campus.edu"
	devPassword    = "campusdispatch-dev"
)

// campusCenter is the quad; seeded recipients fan out north of it so geofence
// previews return a meaningful split at common radii.
var campusCenter = geo.Point{Lat: 40.0, Lng: -74.0}

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
	operators := identityrepo.NewPostgresRepository(conn)

	existing, err := operators.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin@campus.edu exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	seedOperators := []*identitydomain.Operator{
		{
			ID:           "dev-operator-admin",
			Email:        adminEmail,
			Name:         "Dev Admin",
			Role:         identitydomain.RoleAdmin,
			PasswordHash: passwordHash,
			Status:       identitydomain.StatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "dev-operator-moderator",
			Email:        moderatorEmail,
			Name:         "Dev Moderator",
			Role:         identitydomain.RoleModerator,
			PasswordHash: passwordHash,
			Status:       identitydomain.StatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	for _, op := range seedOperators {
		if err := operators.Create(ctx, op); err != nil {
			log.Fatalf("create operator %s: %v", op.Email, err)
		}
	}

	recipients := directory.NewPostgres(conn)
	for i, meters := range []float64{0, 250, 500, 1000, 1500, 3000} {
		id := fmt.Sprintf("dev-recipient-%03d", i+1)
		p := geo.Point{Lat: campusCenter.Lat + meters/111_320, Lng: campusCenter.Lng}
		if err := recipients.Upsert(ctx, id, p); err != nil {
			log.Fatalf("upsert recipient %s: %v", id, err)
		}
	}

	log.Printf("Seeded %d operators and 6 recipients. Login: %s / %s", len(seedOperators), adminEmail, devPassword)
}
