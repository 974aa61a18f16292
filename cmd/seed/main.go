package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
	"github.com/oksasatya/go-otp-auth/internal/domain/repository"
	mongoinfra "github.com/oksasatya/go-otp-auth/internal/infrastructure/mongo"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := flag.String("email", "demo@example.com", "seed user email")
	password := flag.String("password", "password123", "seed user password")
	name := flag.String("name", "demoUser", "seed user name")
	verified := flag.Bool("verified", true, "mark the account verified")
	flag.Parse()

	ctx := context.Background()
	mc, err := mongoinfra.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	repo := mongoinfra.NewUserRepository(mc.Database(cfg.MongoDB))
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}

	hash, err := helpers.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	addr := application.NormalizeEmail(*email)
	u, err := repo.GetByEmail(ctx, addr)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u = &entity.User{Name: *name, Email: addr, Password: hash, IsAccountVerified: *verified}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
	case err != nil:
		log.Fatalf("failed to look up user: %v", err)
	default:
		u.Name, u.Password, u.IsAccountVerified = *name, hash, *verified
		if err := repo.Update(ctx, u); err != nil {
			log.Fatalf("failed to update user: %v", err)
		}
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s verified=%v\n", u.ID, u.Email, u.Name, *password, u.IsAccountVerified)
}
