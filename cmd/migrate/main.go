package main

import (
	"log"

	"sound-service/configs"
	"sound-service/configs/database"
)

func main() {
	cfg := configs.Load()

	var err error
	if cfg.DatabaseURL != "" {
		_, err = database.NewPostgresConnectionWithURL(cfg.DatabaseURL)
	} else {
		_, err = database.NewPostgresConnection(cfg.PostgresUser, cfg.PostgresPassword,
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed")
}
