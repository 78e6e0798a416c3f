package commands

import (
	"context"
	"fmt"

	"structura/internal/application"
	"structura/internal/domain"
	"structura/internal/ports"
)

// PrepopulateResult contains the result of a startup prepopulation
type PrepopulateResult struct {
	Performed bool
	Wiped     bool
	Message   string
}

// PrepopulateCommand seeds the store with a structure document at
// startup: from a file when ViaFile is set, otherwise from an inline
// JSON document. When Overwrite is set a non-empty store is wiped first;
// otherwise the document is merged into the existing catalog.
type PrepopulateCommand struct {
	store     ports.StructureStore
	Enabled   bool
	ViaFile   bool
	FilePath  string
	Document  []byte
	Overwrite bool
}

// NewPrepopulateCommand creates a new PrepopulateCommand
func NewPrepopulateCommand(store ports.StructureStore, enabled, viaFile bool, filePath string, document []byte, overwrite bool) *PrepopulateCommand {
	return &PrepopulateCommand{
		store:     store,
		Enabled:   enabled,
		ViaFile:   viaFile,
		FilePath:  filePath,
		Document:  document,
		Overwrite: overwrite,
	}
}

// Validate checks if the prepopulate operation is valid
func (c *PrepopulateCommand) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ViaFile && c.FilePath == "" {
		return &application.ValidationError{
			Field:   "filePath",
			Message: "a structure file path is required when prepopulating via file",
		}
	}
	if !c.ViaFile && len(c.Document) == 0 {
		return &application.ValidationError{
			Field:   "document",
			Message: "an inline structure document is required when not prepopulating via file",
		}
	}
	return nil
}

// Execute runs the prepopulate command
func (c *PrepopulateCommand) Execute(ctx context.Context) (*PrepopulateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !c.Enabled {
		return &PrepopulateResult{Message: "Prepopulation disabled"}, nil
	}

	var (
		structure *domain.CompleteStructure
		err       error
	)
	if c.ViaFile {
		structure, err = domain.LoadStructureFromFile(c.FilePath)
	} else {
		structure, err = domain.ParseCompleteStructure(c.Document)
	}
	if err != nil {
		return nil, err
	}

	wiped := false
	if c.Overwrite {
		empty, err := c.store.IsEmpty(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check structure state: %w", err)
		}
		if !empty {
			if err := c.store.Wipe(ctx); err != nil {
				return nil, fmt.Errorf("failed to wipe existing structure: %w", err)
			}
			wiped = true
		}
	}

	if err := c.store.Synchronize(ctx, structure); err != nil {
		return nil, err
	}

	return &PrepopulateResult{
		Performed: true,
		Wiped:     wiped,
		Message: fmt.Sprintf("Prepopulated structure with %d element types, %d thing nodes, %d sources, %d sinks",
			len(structure.ElementTypes), len(structure.ThingNodes),
			len(structure.Sources), len(structure.Sinks)),
	}, nil
}
