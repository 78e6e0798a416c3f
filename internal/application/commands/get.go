package commands

import (
	"context"

	"github.com/google/uuid"

	"structura/internal/domain"
	"structura/internal/ports"
)

// GetThingNodeCommand fetches a single thing node by id
type GetThingNodeCommand struct {
	store ports.StructureStore
	ID    uuid.UUID
}

// NewGetThingNodeCommand creates a new GetThingNodeCommand
func NewGetThingNodeCommand(store ports.StructureStore, id uuid.UUID) *GetThingNodeCommand {
	return &GetThingNodeCommand{store: store, ID: id}
}

// Execute runs the get thing node command
func (c *GetThingNodeCommand) Execute(ctx context.Context) (*domain.ThingNode, error) {
	return c.store.GetThingNode(ctx, c.ID)
}

// GetSourceCommand fetches a single source by id
type GetSourceCommand struct {
	store ports.StructureStore
	ID    uuid.UUID
}

// NewGetSourceCommand creates a new GetSourceCommand
func NewGetSourceCommand(store ports.StructureStore, id uuid.UUID) *GetSourceCommand {
	return &GetSourceCommand{store: store, ID: id}
}

// Execute runs the get source command
func (c *GetSourceCommand) Execute(ctx context.Context) (*domain.Source, error) {
	return c.store.GetSource(ctx, c.ID)
}

// GetSinkCommand fetches a single sink by id
type GetSinkCommand struct {
	store ports.StructureStore
	ID    uuid.UUID
}

// NewGetSinkCommand creates a new GetSinkCommand
func NewGetSinkCommand(store ports.StructureStore, id uuid.UUID) *GetSinkCommand {
	return &GetSinkCommand{store: store, ID: id}
}

// Execute runs the get sink command
func (c *GetSinkCommand) Execute(ctx context.Context) (*domain.Sink, error) {
	return c.store.GetSink(ctx, c.ID)
}
