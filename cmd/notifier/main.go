package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sound-service/configs"
	"sound-service/configs/database"
	"sound-service/internal/notifier"
	"sound-service/internal/repository"

	"gorm.io/gorm"
)

func main() {
	cfg := configs.Load()

	db, err := openDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	worker := notifier.NewWorker(cfg.KafkaBrokers, cfg.NotificationTopic, "sound-service-notifier",
		userRepo, notifier.LogSender{}, notifier.LogSender{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	log.Printf("Notification worker consuming %s...", cfg.NotificationTopic)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker stopped: %v", err)
	}
	log.Println("Worker stopped")
}

func openDB(cfg *configs.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return database.NewPostgresConnectionWithURL(cfg.DatabaseURL)
	}
	return database.NewPostgresConnection(cfg.PostgresUser, cfg.PostgresPassword,
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
}
