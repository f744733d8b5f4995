package llm_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"homehub/assistant-api/internal/domain/llm"
)

func testLedger(t *testing.T) *llm.Ledger {
	t.Helper()
	catalog, err := llm.NewCatalog(
		llm.TierOverride{
			Tier:       llm.TierFast,
			InputRate:  decimal.RequireFromString("0.0008"),
			OutputRate: decimal.RequireFromString("0.004"),
		},
		llm.TierOverride{
			Tier:       llm.TierSmart,
			InputRate:  decimal.RequireFromString("0.003"),
			OutputRate: decimal.RequireFromString("0.015"),
		},
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return llm.NewLedger(catalog)
}

func TestLedger_Cost(t *testing.T) {
	tests := []struct {
		name         string
		tier         llm.Tier
		inputTokens  int
		outputTokens int
		expected     string
	}{
		{
			name:         "fast tier per-thousand billing",
			tier:         llm.TierFast,
			inputTokens:  1000,
			outputTokens: 500,
			// 1.0 * 0.0008 + 0.5 * 0.004 dollars = 0.28 cents
			expected: "0.28",
		},
		{
			name:         "smart tier per-thousand billing",
			tier:         llm.TierSmart,
			inputTokens:  2000,
			outputTokens: 1000,
			// 2.0 * 0.003 + 1.0 * 0.015 dollars = 2.1 cents
			expected: "2.1",
		},
		{
			name:         "zero usage costs nothing",
			tier:         llm.TierFast,
			inputTokens:  0,
			outputTokens: 0,
			expected:     "0",
		},
		{
			name:         "sub-thousand usage is fractional",
			tier:         llm.TierFast,
			inputTokens:  100,
			outputTokens: 0,
			// 0.1 * 0.0008 dollars = 0.008 cents
			expected: "0.008",
		},
		{
			name:         "unknown tier costs nothing",
			tier:         llm.Tier("turbo"),
			inputTokens:  1000,
			outputTokens: 1000,
			expected:     "0",
		},
	}

	ledger := testLedger(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.Cost(tt.tier, tt.inputTokens, tt.outputTokens)
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("Cost(%v, %d, %d) = %v, want %v", tt.tier, tt.inputTokens, tt.outputTokens, got, tt.expected)
			}
		})
	}
}

func TestLedger_CostRounding(t *testing.T) {
	ledger := testLedger(t)

	// 1 input token on the fast tier is 0.00008 cents, which rounds to
	// 0.0001 at four decimal places of a cent.
	got := ledger.Cost(llm.TierFast, 1, 0)
	if got.Exponent() < -llm.CostScale {
		t.Errorf("Cost() = %v, want at most %d decimal places", got, llm.CostScale)
	}
	if !got.Equal(decimal.RequireFromString("0.0001")) {
		t.Errorf("Cost(fast, 1, 0) = %v, want 0.0001", got)
	}
}

func TestUsage_Add(t *testing.T) {
	u := llm.Usage{InputTokens: 100, OutputTokens: 20}
	u.Add(llm.Usage{InputTokens: 50, OutputTokens: 30})

	if u.InputTokens != 150 || u.OutputTokens != 50 {
		t.Errorf("Add() = %+v, want input 150 output 50", u)
	}
	if u.Total() != 200 {
		t.Errorf("Total() = %d, want 200", u.Total())
	}
}
