package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"structura/internal/application/commands"
	"structura/internal/domain"
	"structura/internal/ports"
)

// RegisterWriteTools adds all write structure tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, store ports.StructureStore) {
	s.AddTool(syncTool(), syncHandler(store))
	s.AddTool(wipeTool(), wipeHandler(store))
}

// --- sync ---

func syncTool() mcp.Tool {
	return mcp.NewTool("sync",
		mcp.WithDescription("Synchronize a complete structure document into the catalog. Provide either a file path or an inline JSON document."),
		mcp.WithString("file",
			mcp.Description("Path to a structure JSON file"),
		),
		mcp.WithString("document",
			mcp.Description("Inline structure JSON document"),
		),
		mcp.WithBoolean("delete_existing",
			mcp.Description("Wipe the existing catalog before synchronizing (default false)"),
		),
	)
}

func syncHandler(store ports.StructureStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file := req.GetString("file", "")
		document := req.GetString("document", "")
		deleteExisting := req.GetBool("delete_existing", false)

		var (
			structure *domain.CompleteStructure
			err       error
		)
		switch {
		case file != "" && document != "":
			return toolError(fmt.Errorf("provide either file or document, not both"))
		case file != "":
			structure, err = domain.LoadStructureFromFile(file)
		case document != "":
			structure, err = domain.ParseCompleteStructure([]byte(document))
		default:
			return toolError(fmt.Errorf("either file or document is required"))
		}
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewSyncCommand(store, structure, deleteExisting).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- wipe ---

func wipeTool() mcp.Tool {
	return mcp.NewTool("wipe",
		mcp.WithDescription("Delete the entire structure catalog. This cannot be undone."),
	)
}

func wipeHandler(store ports.StructureStore) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewWipeCommand(store).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
