package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/config"
	"homehub/assistant-api/internal/domain/llm"
)

func writeTierFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiers.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing tier file: %v", err)
	}
	return path
}

func TestLoadTierOverrides_EmptyPath(t *testing.T) {
	overrides, err := config.LoadTierOverrides("  ", zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadTierOverrides() error = %v", err)
	}
	if overrides != nil {
		t.Errorf("overrides = %v, want nil", overrides)
	}
}

func TestLoadTierOverrides_ParsesFile(t *testing.T) {
	path := writeTierFile(t, `
tiers:
  - tier: fast
    model: my-fast-model
    input_rate_per_1k: "0.0005"
  - tier: smart
    output_rate_per_1k: "0.02"
`)

	overrides, err := config.LoadTierOverrides(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadTierOverrides() error = %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("got %d overrides, want 2", len(overrides))
	}

	first := overrides[0]
	if first.Tier != llm.TierFast || first.Model != "my-fast-model" {
		t.Errorf("first override = %+v", first)
	}
	if first.InputRate.String() != "0.0005" {
		t.Errorf("first InputRate = %s", first.InputRate)
	}
	if !first.OutputRate.IsZero() {
		t.Errorf("first OutputRate = %s, want zero", first.OutputRate)
	}

	second := overrides[1]
	if second.Tier != llm.TierSmart || second.Model != "" {
		t.Errorf("second override = %+v", second)
	}
	if second.OutputRate.String() != "0.02" {
		t.Errorf("second OutputRate = %s", second.OutputRate)
	}
}

func TestLoadTierOverrides_ExpandsEnvInModel(t *testing.T) {
	t.Setenv("ASSISTANT_FAST_MODEL", "model-from-env")
	path := writeTierFile(t, `
tiers:
  - tier: fast
    model: ${ASSISTANT_FAST_MODEL}
`)

	overrides, err := config.LoadTierOverrides(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadTierOverrides() error = %v", err)
	}
	if len(overrides) != 1 || overrides[0].Model != "model-from-env" {
		t.Errorf("overrides = %+v", overrides)
	}
}

func TestLoadTierOverrides_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown tier",
			content: "tiers:\n  - tier: turbo\n    model: x\n",
			wantErr: "unknown tier",
		},
		{
			name:    "entry overrides nothing",
			content: "tiers:\n  - tier: fast\n",
			wantErr: "overrides nothing",
		},
		{
			name:    "bad rate",
			content: "tiers:\n  - tier: fast\n    input_rate_per_1k: \"cheap\"\n",
			wantErr: "input_rate_per_1k",
		},
		{
			name:    "no tiers",
			content: "tiers: []\n",
			wantErr: "no tiers defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTierFile(t, tt.content)
			_, err := config.LoadTierOverrides(path, zerolog.Nop())
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTierOverrides_MissingFile(t *testing.T) {
	_, err := config.LoadTierOverrides(filepath.Join(t.TempDir(), "absent.yml"), zerolog.Nop())
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}
