// Package commands holds the application command objects shared by the
// CLI, HTTP and MCP surfaces.
package commands

import (
	"context"
	"fmt"

	"structura/internal/application"
	"structura/internal/domain"
	"structura/internal/ports"
)

// SyncResult contains the result of a structure synchronization
type SyncResult struct {
	ElementTypes int
	ThingNodes   int
	Sources      int
	Sinks        int
	Message      string
}

// SyncCommand replaces or merges a complete structure document into the
// store
type SyncCommand struct {
	store          ports.StructureStore
	Structure      *domain.CompleteStructure
	DeleteExisting bool
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand(store ports.StructureStore, structure *domain.CompleteStructure, deleteExisting bool) *SyncCommand {
	return &SyncCommand{
		store:          store,
		Structure:      structure,
		DeleteExisting: deleteExisting,
	}
}

// Validate checks if the sync operation is valid
func (c *SyncCommand) Validate() error {
	if c.Structure == nil {
		return &application.ValidationError{
			Field:   "structure",
			Message: "a structure document is required",
		}
	}
	return nil
}

// Execute runs the sync command
func (c *SyncCommand) Execute(ctx context.Context) (*SyncResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.DeleteExisting {
		if err := c.store.Wipe(ctx); err != nil {
			return nil, fmt.Errorf("failed to wipe existing structure: %w", err)
		}
	}

	if err := c.store.Synchronize(ctx, c.Structure); err != nil {
		return nil, err
	}

	return &SyncResult{
		ElementTypes: len(c.Structure.ElementTypes),
		ThingNodes:   len(c.Structure.ThingNodes),
		Sources:      len(c.Structure.Sources),
		Sinks:        len(c.Structure.Sinks),
		Message: fmt.Sprintf("Synchronized %d element types, %d thing nodes, %d sources, %d sinks",
			len(c.Structure.ElementTypes), len(c.Structure.ThingNodes),
			len(c.Structure.Sources), len(c.Structure.Sinks)),
	}, nil
}

// WipeResult contains the result of a structure wipe
type WipeResult struct {
	Message string
}

// WipeCommand deletes the entire structure from the store
type WipeCommand struct {
	store ports.StructureStore
}

// NewWipeCommand creates a new WipeCommand
func NewWipeCommand(store ports.StructureStore) *WipeCommand {
	return &WipeCommand{store: store}
}

// Execute runs the wipe command
func (c *WipeCommand) Execute(ctx context.Context) (*WipeResult, error) {
	if err := c.store.Wipe(ctx); err != nil {
		return nil, fmt.Errorf("failed to wipe structure: %w", err)
	}
	return &WipeResult{Message: "Structure wiped"}, nil
}
