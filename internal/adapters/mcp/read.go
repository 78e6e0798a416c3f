// Package mcp exposes the structure catalog as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"structura/internal/application/commands"
	"structura/internal/domain"
	"structura/internal/ports"
)

// RegisterReadTools adds all read-only structure tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, store ports.StructureStore) {
	s.AddTool(childrenTool(), childrenHandler(store))
	s.AddTool(getTool(), getHandler(store))
	s.AddTool(searchTool(), searchHandler(store))
}

// --- children ---

func childrenTool() mcp.Tool {
	return mcp.NewTool("children",
		mcp.WithDescription("List one level of the structure hierarchy. Without arguments lists the root thing nodes. With a parent ID lists its child nodes plus the sources and sinks attached to the parent."),
		mcp.WithString("parent_id",
			mcp.Description("UUID of the parent thing node. Omit to list root nodes."),
		),
	)
}

func childrenHandler(store ports.StructureStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		parentID, err := commands.ParseParentID(req.GetString("parent_id", ""))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewGetChildrenCommand(store, parentID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		level := result.Level
		if len(level.ThingNodes) == 0 && len(level.Sources) == 0 && len(level.Sinks) == 0 {
			return mcp.NewToolResultText("No children."), nil
		}

		var sb strings.Builder
		for _, tn := range level.ThingNodes {
			fmt.Fprintf(&sb, "node    %s  %s\n", tn.ID, tn.Name)
		}
		for _, src := range level.Sources {
			fmt.Fprintf(&sb, "source  %s  %s (%s)\n", src.ID, src.Name, src.Type)
		}
		for _, snk := range level.Sinks {
			fmt.Fprintf(&sb, "sink    %s  %s (%s)\n", snk.ID, snk.Name, snk.Type)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- get ---

func getTool() mcp.Tool {
	return mcp.NewTool("get",
		mcp.WithDescription("Fetch a single thing node, source or sink by its UUID."),
		mcp.WithString("kind",
			mcp.Description("Entity kind: thing-node, source or sink"),
			mcp.Required(),
		),
		mcp.WithString("id",
			mcp.Description("UUID of the entity"),
			mcp.Required(),
		),
	)
}

func getHandler(store ports.StructureStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind := req.GetString("kind", "")
		raw := req.GetString("id", "")
		if raw == "" {
			return toolError(fmt.Errorf("id is required"))
		}
		parsed, err := commands.ParseParentID(raw)
		if err != nil {
			return toolError(err)
		}
		id := *parsed

		switch kind {
		case "thing-node":
			tn, err := commands.NewGetThingNodeCommand(store, id).Execute(ctx)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(formatThingNode(tn)), nil

		case "source":
			src, err := commands.NewGetSourceCommand(store, id).Execute(ctx)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(formatSource(src)), nil

		case "sink":
			snk, err := commands.NewGetSinkCommand(store, id).Execute(ctx)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(formatSink(snk)), nil

		default:
			return toolError(fmt.Errorf("invalid kind: %s (expected thing-node, source or sink)", kind))
		}
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search the structure catalog by name substring, case-insensitively."),
		mcp.WithString("query",
			mcp.Description("Name substring to search for"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Entity kind to search: element-type, thing-node, source, sink or all (default all)"),
		),
	)
}

func searchHandler(store ports.StructureStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		kind, err := commands.ParseSearchKind(req.GetString("kind", string(commands.SearchKindAll)))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewSearchCommand(store, kind, query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if result.Total() == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, et := range result.ElementTypes {
			fmt.Fprintf(&sb, "element-type  %s  %s\n", et.ID, et.Name)
		}
		for _, tn := range result.ThingNodes {
			fmt.Fprintf(&sb, "thing-node    %s  %s\n", tn.ID, tn.Name)
		}
		for _, src := range result.Sources {
			fmt.Fprintf(&sb, "source        %s  %s\n", src.ID, src.Name)
		}
		for _, snk := range result.Sinks {
			fmt.Fprintf(&sb, "sink          %s  %s\n", snk.ID, snk.Name)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatThingNode(tn *domain.ThingNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", tn.ID, tn.Name)
	fmt.Fprintf(&sb, "external id: %s (%s)\n", tn.ExternalID, tn.StakeholderKey)
	fmt.Fprintf(&sb, "element type: %s\n", tn.ElementTypeExternalID)
	if tn.ParentNodeID != nil {
		fmt.Fprintf(&sb, "parent: %s\n", tn.ParentNodeID)
	}
	if tn.Description != "" {
		fmt.Fprintf(&sb, "description: %s\n", tn.Description)
	}
	return sb.String()
}

func formatSource(src *domain.Source) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s (%s)\n", src.ID, src.Name, src.Type)
	fmt.Fprintf(&sb, "external id: %s (%s)\n", src.ExternalID, src.StakeholderKey)
	fmt.Fprintf(&sb, "path: %s\n", src.DisplayPath)
	fmt.Fprintf(&sb, "adapter: %s  source id: %s\n", src.AdapterKey, src.SourceID)
	if len(src.ThingNodeExternalID) > 0 {
		fmt.Fprintf(&sb, "attached to: %s\n", strings.Join(src.ThingNodeExternalID, ", "))
	}
	return sb.String()
}

func formatSink(snk *domain.Sink) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s (%s)\n", snk.ID, snk.Name, snk.Type)
	fmt.Fprintf(&sb, "external id: %s (%s)\n", snk.ExternalID, snk.StakeholderKey)
	fmt.Fprintf(&sb, "path: %s\n", snk.DisplayPath)
	fmt.Fprintf(&sb, "adapter: %s  sink id: %s\n", snk.AdapterKey, snk.SinkID)
	if len(snk.ThingNodeExternalID) > 0 {
		fmt.Fprintf(&sb, "attached to: %s\n", strings.Join(snk.ThingNodeExternalID, ", "))
	}
	return sb.String()
}
