package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "structura/internal/adapters/mcp"
	"structura/internal/adapters/sqlite"
	"structura/internal/config"
)

func main() {
	dbFlag := flag.String("db", "", "path to the catalog database")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("structura-mcp: %v", err)
	}
	if *dbFlag != "" {
		cfg.DatabasePath = *dbFlag
	}

	store, err := sqlite.Open(cfg.DatabasePath, sqlite.Options{BatchSize: cfg.BatchSize})
	if err != nil {
		log.Fatalf("structura-mcp: %v", err)
	}
	defer store.Close()

	mcpServer := server.NewMCPServer(
		"structura-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check — returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, store)
	mcpadapter.RegisterWriteTools(mcpServer, store)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("structura-mcp: %v", err)
	}
}
