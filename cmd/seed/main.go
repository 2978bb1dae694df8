package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Seeds the database with the default categories, one admin, two agents and
// two customers, plus a couple of sample tickets.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	categories := map[string]string{}
	for _, name := range []string{"Technical", "Billing", "General", "Account"} {
		category := &domain.Category{Name: name}
		if existing, err := categoryRepo.GetByName(ctx, name); err == nil {
			categories[name] = existing.ID
			continue
		}
		if err := categoryRepo.Create(ctx, category); err != nil {
			logger.Fatal("failed to seed category", zap.String("name", name), zap.Error(err))
		}
		categories[name] = category.ID
	}

	seedUsers := []struct {
		name  string
		email string
		role  domain.Role
	}{
		{"Admin User", "admin@example.com", domain.RoleAdmin},
		{"Agent One", "agent1@example.com", domain.RoleAgent},
		{"Agent Two", "agent2@example.com", domain.RoleAgent},
		{"User One", "user1@example.com", domain.RoleCustomer},
		{"User Two", "user2@example.com", domain.RoleCustomer},
	}

	password := envOr("SEED_PASSWORD", "pass123")
	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash seed password", zap.Error(err))
	}

	ids := map[string]string{}
	for _, su := range seedUsers {
		if existing, err := userRepo.GetByEmail(ctx, su.email); err == nil {
			ids[su.email] = existing.ID
			continue
		}
		user := &domain.User{Name: su.name, Email: su.email, PasswordHash: hash, Role: su.role}
		if err := userRepo.Create(ctx, user); err != nil {
			logger.Fatal("failed to seed user", zap.String("email", su.email), zap.Error(err))
		}
		ids[su.email] = user.ID
	}

	agent1 := ids["agent1@example.com"]
	agent2 := ids["agent2@example.com"]
	samples := []*domain.Ticket{
		{
			Title:       "Sample Ticket 1",
			Description: "This is a sample ticket 1.",
			CategoryID:  categories["Technical"],
			Status:      domain.TicketStatusOpen,
			CreatedBy:   ids["user1@example.com"],
			AssignedTo:  &agent1,
		},
		{
			Title:       "Sample Ticket 2",
			Description: "This is a sample ticket 2.",
			CategoryID:  categories["Billing"],
			Status:      domain.TicketStatusOpen,
			CreatedBy:   ids["user2@example.com"],
			AssignedTo:  &agent2,
		},
	}
	for _, ticket := range samples {
		if err := ticketRepo.Create(ctx, ticket); err != nil {
			logger.Fatal("failed to seed ticket", zap.String("title", ticket.Title), zap.Error(err))
		}
	}

	logger.Info("seed data created",
		zap.Int("categories", len(categories)),
		zap.Int("users", len(seedUsers)),
		zap.Int("tickets", len(samples)))
}

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
