package llm

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is a named quality/cost level of the model backend.
type Tier string

const (
	TierFast  Tier = "fast"
	TierSmart Tier = "smart"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFast || t == TierSmart
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// TierModel binds a tier to a concrete model identifier and its prices in
// dollars per 1000 tokens.
type TierModel struct {
	Model      string
	InputRate  decimal.Decimal
	OutputRate decimal.Decimal
}

// TierOverride replaces a default catalog entry at boot.
type TierOverride struct {
	Tier       Tier
	Model      string
	InputRate  decimal.Decimal
	OutputRate decimal.Decimal
}

// Catalog maps tiers to models and prices. It is immutable after construction.
type Catalog struct {
	tiers map[Tier]TierModel
}

// NewCatalog builds a catalog from the compiled-in defaults with any
// overrides applied. An override naming an unknown tier is an error.
func NewCatalog(overrides ...TierOverride) (*Catalog, error) {
	tiers := map[Tier]TierModel{
		TierFast: {
			Model:      "claude-3-5-haiku-latest",
			InputRate:  decimal.RequireFromString("0.0008"),
			OutputRate: decimal.RequireFromString("0.004"),
		},
		TierSmart: {
			Model:      "claude-sonnet-4-20250514",
			InputRate:  decimal.RequireFromString("0.003"),
			OutputRate: decimal.RequireFromString("0.015"),
		},
	}

	for _, o := range overrides {
		if !o.Tier.Valid() {
			return nil, fmt.Errorf("unknown model tier %q", o.Tier)
		}
		entry := tiers[o.Tier]
		if o.Model != "" {
			entry.Model = o.Model
		}
		if o.InputRate.IsPositive() {
			entry.InputRate = o.InputRate
		}
		if o.OutputRate.IsPositive() {
			entry.OutputRate = o.OutputRate
		}
		tiers[o.Tier] = entry
	}

	return &Catalog{tiers: tiers}, nil
}

// Resolve returns the model entry for the tier.
func (c *Catalog) Resolve(t Tier) (TierModel, bool) {
	entry, ok := c.tiers[t]
	return entry, ok
}

// Model returns the model identifier for the tier, empty when unknown.
func (c *Catalog) Model(t Tier) string {
	return c.tiers[t].Model
}
