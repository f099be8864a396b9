package plugin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/fabric/entity"
	"github.com/xraph/fabric/id"
)

// hookPlugin implements Plugin + EntityCreated + AvailabilityChanged.
type hookPlugin struct {
	entityCreatedCalled bool
	availabilityCalled  bool
}

func (p *hookPlugin) Name() string { return "hook-plugin" }

func (p *hookPlugin) OnEntityCreated(_ context.Context, _ *entity.Entity) error {
	p.entityCreatedCalled = true
	return nil
}

func (p *hookPlugin) OnAvailabilityChanged(_ context.Context, _ string, _ id.EntityID, _ bool) error {
	p.availabilityCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	hp := &hookPlugin{}
	reg.Register(hp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch EntityCreated to hookPlugin only.
	reg.EmitEntityCreated(ctx, &entity.Entity{ID: id.NewEntityID(), Name: "unit-a"})
	if !hp.entityCreatedCalled {
		t.Fatal("OnEntityCreated was not called")
	}

	// Should dispatch AvailabilityChanged.
	reg.EmitAvailabilityChanged(ctx, "tenant-a", id.NewEntityID(), true)
	if !hp.availabilityCalled {
		t.Fatal("OnAvailabilityChanged was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitLinkDeleted(ctx, id.NewLinkID())
	reg.EmitActionRecorded(ctx, nil)
	reg.EmitShutdown(ctx)
}
