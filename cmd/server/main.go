package main

import (
	"log"

	"github.com/mobilitylab/trips-backend-go/internal/api"
	"github.com/mobilitylab/trips-backend-go/internal/config"
	"github.com/mobilitylab/trips-backend-go/internal/database"

	// Import analyzer packages to register them
	_ "github.com/mobilitylab/trips-backend-go/internal/analysis/locations"
	_ "github.com/mobilitylab/trips-backend-go/internal/analysis/smoothing"
	_ "github.com/mobilitylab/trips-backend-go/internal/analysis/trips"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	router := api.SetupRouter(cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
