package llm

import "github.com/shopspring/decimal"

var (
	tokensPerRate = decimal.NewFromInt(1000)
	centsPerUnit  = decimal.NewFromInt(100)
)

// CostScale is the number of decimal places of a cent a per-message cost is
// rounded to at write time.
const CostScale = 4

// Ledger prices messages from the static tier price table. Aggregation over
// periods is a read-side concern of reporting collaborators, not owned here.
type Ledger struct {
	catalog *Catalog
}

// NewLedger creates a ledger over the tier catalog.
func NewLedger(catalog *Catalog) *Ledger {
	return &Ledger{catalog: catalog}
}

// Cost returns the cost in cents of one message: tokens billed per 1000 at
// the tier's input and output rates, rounded to CostScale decimal places.
func (l *Ledger) Cost(tier Tier, inputTokens, outputTokens int) decimal.Decimal {
	entry, ok := l.catalog.Resolve(tier)
	if !ok {
		return decimal.Zero
	}

	input := decimal.NewFromInt(int64(inputTokens)).Div(tokensPerRate).Mul(entry.InputRate)
	output := decimal.NewFromInt(int64(outputTokens)).Div(tokensPerRate).Mul(entry.OutputRate)
	return input.Add(output).Mul(centsPerUnit).Round(CostScale)
}
