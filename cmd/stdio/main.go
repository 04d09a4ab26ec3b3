package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/postcraft-io/template-studio/internal/api"
	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/mcp"
	"github.com/postcraft-io/template-studio/internal/server"
	"github.com/postcraft-io/template-studio/internal/services"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func configureAndStartServer(dbService services.DBService, appLog *logger.Logger, port int) (*api.APIServer, *mcp.MCPServer, int, error) {
	templateService, elementService, assetService := server.InitializeServices(dbService.GetDB())

	exporter, err := server.InitializeCanvas(assetService, appLog)
	if err != nil {
		return nil, nil, 0, err
	}
	sessionManager := server.InitializeSessionManager(templateService, elementService, appLog)

	// Local editing server: no authentication (key difference from streamable-http)
	apiServer := api.NewAPIServer(templateService, elementService, assetService, exporter, sessionManager, appLog)
	apiServer.SetupRoutes()

	startedPort, err := apiServer.Start(port)
	if err != nil {
		return nil, nil, 0, err
	}

	mcpServer := mcp.NewMCPServer(templateService, elementService, exporter)

	return apiServer, mcpServer, startedPort, nil
}

func main() {
	// Command line flags
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	flag.Parse()

	// Disable logging by default: stdout belongs to the MCP transport
	if !*enableLog {
		log.SetOutput(io.Discard)
	}

	if *showVersion {
		log.Printf("Template Studio MCP Server\n")
		log.Printf("Version: %s\n", Version)
		log.Printf("Commit: %s\n", CommitHash)
		log.Printf("Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		log.Printf("Template Studio MCP Server\n\n")
		log.Printf("Usage: %s [options]\n\n", os.Args[0])
		log.Printf("Options:\n")
		log.Printf("  --version    Show version information\n")
		log.Printf("  --help       Show this help message\n")
		log.Printf("  --log        Enable logging output\n\n")
		log.Printf("Description:\n")
		log.Printf("  Design template editor backend for marketing content.\n")
		log.Printf("  Provides 10 MCP tools for template and element management plus PNG export.\n\n")
		log.Printf("Database: ~/template-studio.db (SQLite)\n")
		log.Printf("Web Interface: http://localhost:[random-port]\n")
		return
	}

	appLog, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Get home directory for database
	homePath, err := os.UserHomeDir()
	if err != nil {
		log.Fatal("Failed to get home directory:", err)
	}

	dbPath := homePath + "/template-studio.db"
	if env := os.Getenv("DATABASE_PATH"); env != "" {
		dbPath = env
	}
	dbService, err := services.NewSqliteDBService(dbPath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer dbService.Close()

	// Configure and start server
	apiServer, mcpServer, port, err := configureAndStartServer(dbService, appLog, 0) // 0 for random port
	if err != nil {
		log.Fatal("Failed to start API server:", err)
	}

	log.Printf("API server started on port %d\n", port)

	// Start MCP server on stdio in a goroutine
	go func() {
		if err := mcpServer.Start(); err != nil {
			log.SetOutput(os.Stderr)
			log.SetFlags(0)
			log.Fatal("Failed to start MCP server:", err)
		}
	}()

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("\nShutting down servers...")

	if err := apiServer.Shutdown(); err != nil {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
		log.Printf("Error shutting down API server: %v", err)
	}

	log.Println("Servers shut down successfully")
}
