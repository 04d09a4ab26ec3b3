package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present

	"github.com/postcraft-io/template-studio/internal/api"
	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/server"
	"github.com/postcraft-io/template-studio/internal/services"
	"github.com/postcraft-io/template-studio/internal/utils"
)

func main() {
	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	parsedPort, err := strconv.Atoi(port)
	if err != nil {
		log.Fatal("Invalid port number:", err)
	}

	appLog, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// initialize postgres database
	postgresUrl := os.Getenv("POSTGRES_URL")
	dbService, err := services.NewPostgresDBService(postgresUrl)
	if err != nil {
		log.Fatal("Failed to initialize database service:", err)
	}
	defer dbService.Close()

	templateService, elementService, assetService := server.InitializeServices(dbService.GetDB())

	exporter, err := server.InitializeCanvas(assetService, appLog)
	if err != nil {
		log.Fatal("Failed to initialize render pipeline:", err)
	}
	sessionManager := server.InitializeSessionManager(templateService, elementService, appLog)

	apiServer := api.NewAPIServer(templateService, elementService, assetService, exporter, sessionManager, appLog)

	// Bearer-token auth when a JWKS endpoint is configured
	if jwksUri := os.Getenv("JWKS_URI"); jwksUri != "" {
		authenticator := utils.NewJwtAuthenticator(jwksUri)
		apiServer.EnableAuthentication(authenticator, os.Getenv("RESOURCE_ID"))
	}
	apiServer.SetupRoutes()

	startedPort, err := apiServer.Start(parsedPort)
	if err != nil {
		log.Fatal("Failed to start API server:", err)
	}

	log.Printf("API server started on port %d\n", startedPort)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("\nShutting down server...")

	if err := apiServer.Shutdown(); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}

	log.Println("Server shut down successfully")
}
