// Package ports defines the interfaces between the application core and
// its adapters.
package ports

import (
	"context"

	"github.com/google/uuid"

	"structura/internal/domain"
)

// StructureStore persists the structure catalog and keeps it consistent
// under repeated bulk replacement. Write access goes exclusively through
// Synchronize and Wipe; callers never hand in surrogate ids for writes.
type StructureStore interface {
	// Synchronize reconciles one complete structure document against
	// the store inside a single transaction: validation, natural key
	// resolution, hierarchy ordering, upserts and association
	// reconciliation. Any failure rolls the whole operation back.
	Synchronize(ctx context.Context, structure *domain.CompleteStructure) error

	// Wipe deletes the entire structure, associations first, in an
	// order that satisfies the foreign key constraints.
	Wipe(ctx context.Context) error

	// IsEmpty reports whether all four entity tables hold zero rows.
	IsEmpty(ctx context.Context) (bool, error)

	// GetChildren returns one level of the tree. A nil parent id
	// selects the root nodes (with empty source/sink lists); otherwise
	// the direct children of the parent plus the sources and sinks
	// attached to the parent itself.
	GetChildren(ctx context.Context, parentID *uuid.UUID) (*domain.StructureLevel, error)

	// Single-entity fetches; application.ErrNotFound when absent.
	GetThingNode(ctx context.Context, id uuid.UUID) (*domain.ThingNode, error)
	GetSource(ctx context.Context, id uuid.UUID) (*domain.Source, error)
	GetSink(ctx context.Context, id uuid.UUID) (*domain.Sink, error)

	// Batched multi-fetches; application.ErrNotFound only when the
	// input list is non-empty and nothing was found.
	GetThingNodesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.ThingNode, error)
	GetSourcesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Source, error)
	GetSinksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Sink, error)

	// Case-insensitive substring search over the name field.
	SearchElementTypesByName(ctx context.Context, substring string) ([]*domain.ElementType, error)
	SearchThingNodesByName(ctx context.Context, substring string) ([]*domain.ThingNode, error)
	SearchSourcesByName(ctx context.Context, substring string) ([]*domain.Source, error)
	SearchSinksByName(ctx context.Context, substring string) ([]*domain.Sink, error)

	Close() error
}
