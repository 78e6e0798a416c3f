package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"structura/internal/application"
	"structura/internal/domain"
)

func errNotFoundForTest(id uuid.UUID) error {
	return fmt.Errorf("%s: %w", id, application.ErrNotFound)
}

// fakeStore records calls and serves canned responses. Methods not
// configured return zero values.
type fakeStore struct {
	synchronized []*domain.CompleteStructure
	wipeCalls    int
	empty        bool

	synchronizeErr error
	wipeErr        error
	isEmptyErr     error

	children     *domain.StructureLevel
	childrenErr  error
	elementTypes []*domain.ElementType
	thingNodes   []*domain.ThingNode
	sources      []*domain.Source
	sinks        []*domain.Sink
	searchErr    error
}

func (f *fakeStore) Synchronize(ctx context.Context, structure *domain.CompleteStructure) error {
	if f.synchronizeErr != nil {
		return f.synchronizeErr
	}
	f.synchronized = append(f.synchronized, structure)
	return nil
}

func (f *fakeStore) Wipe(ctx context.Context) error {
	if f.wipeErr != nil {
		return f.wipeErr
	}
	f.wipeCalls++
	return nil
}

func (f *fakeStore) IsEmpty(ctx context.Context) (bool, error) {
	return f.empty, f.isEmptyErr
}

func (f *fakeStore) GetChildren(ctx context.Context, parentID *uuid.UUID) (*domain.StructureLevel, error) {
	return f.children, f.childrenErr
}

func (f *fakeStore) GetThingNode(ctx context.Context, id uuid.UUID) (*domain.ThingNode, error) {
	for _, tn := range f.thingNodes {
		if tn.ID == id {
			return tn, nil
		}
	}
	return nil, errNotFoundForTest(id)
}

func (f *fakeStore) GetSource(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	for _, src := range f.sources {
		if src.ID == id {
			return src, nil
		}
	}
	return nil, errNotFoundForTest(id)
}

func (f *fakeStore) GetSink(ctx context.Context, id uuid.UUID) (*domain.Sink, error) {
	for _, snk := range f.sinks {
		if snk.ID == id {
			return snk, nil
		}
	}
	return nil, errNotFoundForTest(id)
}

func (f *fakeStore) GetThingNodesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.ThingNode, error) {
	out := make(map[uuid.UUID]*domain.ThingNode)
	for _, tn := range f.thingNodes {
		for _, id := range ids {
			if tn.ID == id {
				out[id] = tn
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetSourcesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Source, error) {
	out := make(map[uuid.UUID]*domain.Source)
	for _, src := range f.sources {
		for _, id := range ids {
			if src.ID == id {
				out[id] = src
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetSinksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Sink, error) {
	out := make(map[uuid.UUID]*domain.Sink)
	for _, snk := range f.sinks {
		for _, id := range ids {
			if snk.ID == id {
				out[id] = snk
			}
		}
	}
	return out, nil
}

func (f *fakeStore) SearchElementTypesByName(ctx context.Context, substring string) ([]*domain.ElementType, error) {
	return f.elementTypes, f.searchErr
}

func (f *fakeStore) SearchThingNodesByName(ctx context.Context, substring string) ([]*domain.ThingNode, error) {
	return f.thingNodes, f.searchErr
}

func (f *fakeStore) SearchSourcesByName(ctx context.Context, substring string) ([]*domain.Source, error) {
	return f.sources, f.searchErr
}

func (f *fakeStore) SearchSinksByName(ctx context.Context, substring string) ([]*domain.Sink, error) {
	return f.sinks, f.searchErr
}

func (f *fakeStore) Close() error { return nil }
