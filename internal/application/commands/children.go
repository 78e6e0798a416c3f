package commands

import (
	"context"

	"github.com/google/uuid"

	"structura/internal/application"
	"structura/internal/domain"
	"structura/internal/ports"
)

// GetChildrenResult contains one level of the navigable tree
type GetChildrenResult struct {
	Level *domain.StructureLevel
}

// GetChildrenCommand fetches the direct children of a thing node, or the
// root nodes when no parent is given
type GetChildrenCommand struct {
	store    ports.StructureStore
	ParentID *uuid.UUID
}

// NewGetChildrenCommand creates a new GetChildrenCommand
func NewGetChildrenCommand(store ports.StructureStore, parentID *uuid.UUID) *GetChildrenCommand {
	return &GetChildrenCommand{store: store, ParentID: parentID}
}

// Execute runs the get children command
func (c *GetChildrenCommand) Execute(ctx context.Context) (*GetChildrenResult, error) {
	level, err := c.store.GetChildren(ctx, c.ParentID)
	if err != nil {
		return nil, err
	}
	return &GetChildrenResult{Level: level}, nil
}

// ParseParentID parses an optional parent id argument. An empty string
// selects the root level.
func ParseParentID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &application.ValidationError{
			Field:   "parentID",
			Message: "parent id must be a UUID",
		}
	}
	return &id, nil
}
