package tool_test

import (
	"context"
	"encoding/json"
	"testing"

	"homehub/assistant-api/internal/domain/tool"
)

func noopHandler(ctx context.Context, args json.RawMessage, actingUserID string) (any, error) {
	return nil, nil
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	registry := tool.NewRegistry()

	err := registry.Register(tool.Definition{Name: "list_tasks", Description: "List tasks"}, noopHandler)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, ok := registry.Resolve("list_tasks"); !ok {
		t.Error("Expected list_tasks to resolve")
	}
	if _, ok := registry.Resolve("unknown"); ok {
		t.Error("Expected unknown tool not to resolve")
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	registry := tool.NewRegistry()

	if err := registry.Register(tool.Definition{Name: "list_tasks"}, noopHandler); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(tool.Definition{Name: "list_tasks"}, noopHandler); err == nil {
		t.Error("Expected an error registering the same name twice")
	}
}

func TestRegistry_RejectsInvalidEntries(t *testing.T) {
	registry := tool.NewRegistry()

	if err := registry.Register(tool.Definition{}, noopHandler); err == nil {
		t.Error("Expected an error for a nameless definition")
	}
	if err := registry.Register(tool.Definition{Name: "list_tasks"}, nil); err == nil {
		t.Error("Expected an error for a nil handler")
	}
}

func TestRegistry_Replace(t *testing.T) {
	registry := tool.NewRegistry()

	if err := registry.Register(tool.Definition{Name: "list_tasks", Description: "v1"}, noopHandler); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	registry.Replace(tool.Definition{Name: "list_tasks", Description: "v2"}, noopHandler)

	manifest := registry.Manifest()
	if len(manifest) != 1 {
		t.Fatalf("Manifest has %d entries, want 1", len(manifest))
	}
	if manifest[0].Description != "v2" {
		t.Errorf("Description = %q, want v2", manifest[0].Description)
	}
}

func TestRegistry_ManifestIsSorted(t *testing.T) {
	registry := tool.NewRegistry()
	for _, name := range []string{"update_budget", "add_task", "list_goals"} {
		if err := registry.Register(tool.Definition{Name: name}, noopHandler); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	manifest := registry.Manifest()
	want := []string{"add_task", "list_goals", "update_budget"}
	if len(manifest) != len(want) {
		t.Fatalf("Manifest has %d entries, want %d", len(manifest), len(want))
	}
	for i, name := range want {
		if manifest[i].Name != name {
			t.Errorf("Manifest[%d].Name = %q, want %q", i, manifest[i].Name, name)
		}
	}
}
