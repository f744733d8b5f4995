package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"homehub/assistant-api/internal/domain/llm"
)

// LoadTierOverrides parses the yaml file at the provided path into catalog
// overrides. An empty path means no overrides.
func LoadTierOverrides(path string, log zerolog.Logger) ([]llm.TierOverride, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read tier config %q: %w", cleanPath, err)
	}
	log.Info().Str("path", cleanPath).Msg("loading model tier config file")

	var doc tierConfigDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tier config %q: %w", cleanPath, err)
	}

	if len(doc.Tiers) == 0 {
		return nil, fmt.Errorf("tier config %q has no tiers defined", cleanPath)
	}

	overrides := make([]llm.TierOverride, 0, len(doc.Tiers))
	for idx, entry := range doc.Tiers {
		override, err := normalizeTierEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("tiers[%d]: %w", idx, err)
		}
		log.Info().
			Str("tier", override.Tier.String()).
			Str("model", override.Model).
			Msg("including tier override")
		overrides = append(overrides, override)
	}

	return overrides, nil
}

type tierConfigDocument struct {
	Tiers []tierConfigEntry `yaml:"tiers"`
}

type tierConfigEntry struct {
	Tier            string `yaml:"tier"`
	Model           string `yaml:"model"`
	InputRatePer1K  string `yaml:"input_rate_per_1k"`
	OutputRatePer1K string `yaml:"output_rate_per_1k"`
}

func normalizeTierEntry(entry tierConfigEntry) (llm.TierOverride, error) {
	tier := llm.Tier(strings.TrimSpace(entry.Tier))
	if !tier.Valid() {
		return llm.TierOverride{}, fmt.Errorf("unknown tier %q", entry.Tier)
	}

	model := strings.TrimSpace(os.ExpandEnv(entry.Model))
	if model == "" && entry.InputRatePer1K == "" && entry.OutputRatePer1K == "" {
		return llm.TierOverride{}, errors.New("entry overrides nothing")
	}

	override := llm.TierOverride{Tier: tier, Model: model}

	if raw := strings.TrimSpace(entry.InputRatePer1K); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return llm.TierOverride{}, fmt.Errorf("input_rate_per_1k: %w", err)
		}
		override.InputRate = rate
	}
	if raw := strings.TrimSpace(entry.OutputRatePer1K); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return llm.TierOverride{}, fmt.Errorf("output_rate_per_1k: %w", err)
		}
		override.OutputRate = rate
	}

	return override, nil
}
