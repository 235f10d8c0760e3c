package main

import (
	"context"
	"log"

	"sound-service/configs"
	"sound-service/configs/database"
	"sound-service/internal/models"
	"sound-service/internal/repository"
	"sound-service/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg := configs.Load()

	var db *gorm.DB
	var err error
	if cfg.DatabaseURL != "" {
		db, err = database.NewPostgresConnectionWithURL(cfg.DatabaseURL)
	} else {
		db, err = database.NewPostgresConnection(cfg.PostgresUser, cfg.PostgresPassword,
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	connectionService := service.NewConnectionService(connRepo, userRepo, service.NewNoopNotifier())

	ctx := context.Background()

	seedUsers := []models.User{
		{Username: "alice", Email: "alice@example.com", Phone: "+15550100"},
		{Username: "bob", Email: "bob@example.com", Phone: "+15550101"},
		{Username: "carol", Email: "carol@example.com", Premium: true, SubscriptionStatus: models.SubscriptionActive},
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	ids := make([]uint, 0, len(seedUsers))
	for i := range seedUsers {
		seedUsers[i].Password = string(hashed)
		if existing, err := userRepo.FindByEmail(ctx, seedUsers[i].Email); err == nil {
			ids = append(ids, existing.ID)
			continue
		}
		if err := userRepo.Create(ctx, &seedUsers[i]); err != nil {
			log.Fatalf("Failed to seed user %s: %v", seedUsers[i].Email, err)
		}
		ids = append(ids, seedUsers[i].ID)
	}

	// alice -> bob pending, alice <-> carol accepted
	if conn, err := connectionService.SendRequest(ctx, ids[0], ids[1]); err != nil {
		log.Printf("Seed request alice->bob skipped: %v", err)
	} else {
		log.Printf("Seeded pending connection %d", conn.ID)
	}
	if conn, err := connectionService.SendRequest(ctx, ids[0], ids[2]); err != nil {
		log.Printf("Seed request alice->carol skipped: %v", err)
	} else {
		if _, err := connectionService.AcceptRequest(ctx, conn.ID, ids[2]); err != nil {
			log.Printf("Seed accept carol skipped: %v", err)
		}
	}

	log.Println("Seeding completed")
}
