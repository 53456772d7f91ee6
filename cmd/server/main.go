// ABOUTME: Main entry point for the nyaya MCP server with stdio transport
// ABOUTME: Initializes the indexes and service and registers all tools
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/arjun/nyaya/internal/app"
	"github.com/arjun/nyaya/internal/config"
	"github.com/arjun/nyaya/internal/mcp"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - embeddings and generation will not work")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	service, err := app.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	defer service.Close()

	server := mcpserver.NewMCPServer(
		"Nyaya Legal Research",
		"0.1.0",
	)

	mcp.RegisterTools(server, service)

	log.Println("nyaya MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
