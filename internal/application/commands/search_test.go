package commands

import (
	"context"
	"testing"

	"structura/internal/domain"
)

func TestParseSearchKind(t *testing.T) {
	tests := []struct {
		raw     string
		want    SearchKind
		wantErr bool
	}{
		{raw: "element-type", want: SearchKindElementType},
		{raw: "thing-node", want: SearchKindThingNode},
		{raw: "source", want: SearchKindSource},
		{raw: "sink", want: SearchKindSink},
		{raw: "all", want: SearchKindAll},
		{raw: "node", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSearchKind(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSearchCommand(t *testing.T) {
	store := &fakeStore{
		elementTypes: []*domain.ElementType{{Name: "Plant"}},
		thingNodes:   []*domain.ThingNode{{Name: "Plant 1"}, {Name: "Plant 2"}},
		sources:      []*domain.Source{{Name: "Plant 1 temperature"}},
		sinks:        []*domain.Sink{{Name: "Plant 1 setpoint"}},
	}

	t.Run("single kind searches only that kind", func(t *testing.T) {
		result, err := NewSearchCommand(store, SearchKindThingNode, "plant").Execute(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.ThingNodes) != 2 {
			t.Errorf("expected 2 thing nodes, got %d", len(result.ThingNodes))
		}
		if len(result.ElementTypes) != 0 || len(result.Sources) != 0 || len(result.Sinks) != 0 {
			t.Errorf("expected other kinds empty: %+v", result)
		}
	})

	t.Run("all searches every kind", func(t *testing.T) {
		result, err := NewSearchCommand(store, SearchKindAll, "plant").Execute(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Total() != 5 {
			t.Errorf("expected 5 total matches, got %d", result.Total())
		}
	})
}
