package main

import (
	"log"

	"statflow/internal/api"
	"statflow/internal/config"
	"statflow/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	server := api.NewServer(appContainer)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
