package llm_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"homehub/assistant-api/internal/domain/llm"
)

func TestNewCatalog_Defaults(t *testing.T) {
	catalog, err := llm.NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	for _, tier := range []llm.Tier{llm.TierFast, llm.TierSmart} {
		entry, ok := catalog.Resolve(tier)
		if !ok {
			t.Fatalf("Resolve(%v) not found", tier)
		}
		if entry.Model == "" {
			t.Errorf("tier %v has no model", tier)
		}
		if !entry.InputRate.IsPositive() || !entry.OutputRate.IsPositive() {
			t.Errorf("tier %v has non-positive rates", tier)
		}
	}
}

func TestNewCatalog_Overrides(t *testing.T) {
	catalog, err := llm.NewCatalog(llm.TierOverride{
		Tier:      llm.TierFast,
		Model:     "custom-fast-model",
		InputRate: decimal.RequireFromString("0.001"),
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	entry, ok := catalog.Resolve(llm.TierFast)
	if !ok {
		t.Fatal("Resolve(fast) not found")
	}
	if entry.Model != "custom-fast-model" {
		t.Errorf("Model = %q, want custom-fast-model", entry.Model)
	}
	if !entry.InputRate.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("InputRate = %v, want 0.001", entry.InputRate)
	}
	// The output rate was not overridden and keeps its default.
	if !entry.OutputRate.IsPositive() {
		t.Errorf("OutputRate = %v, want default positive rate", entry.OutputRate)
	}
}

func TestNewCatalog_UnknownTierOverride(t *testing.T) {
	_, err := llm.NewCatalog(llm.TierOverride{Tier: llm.Tier("turbo")})
	if err == nil {
		t.Fatal("Expected an error for an unknown tier override")
	}
}

func TestCatalog_Model(t *testing.T) {
	catalog, err := llm.NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if catalog.Model(llm.TierFast) == "" {
		t.Error("Model(fast) is empty")
	}
	if catalog.Model(llm.Tier("turbo")) != "" {
		t.Error("Model(unknown) should be empty")
	}
}

func TestTier_Valid(t *testing.T) {
	if !llm.TierFast.Valid() || !llm.TierSmart.Valid() {
		t.Error("built-in tiers should be valid")
	}
	if llm.Tier("turbo").Valid() {
		t.Error("unknown tier should not be valid")
	}
}
