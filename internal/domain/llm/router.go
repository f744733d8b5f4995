package llm

import "strings"

// Router picks the tier that should serve a user message. Classification is
// a deterministic keyword heuristic over the text, no I/O: requests that
// call for analysis or synthesis route to the smart tier, everything else
// stays on the fast one.
type Router struct{}

// NewRouter creates a message router.
func NewRouter() *Router {
	return &Router{}
}

var smartKeywordGroups = [][]string{
	// financial analysis
	{"analyze", "analyse", "analysis", "spending", "overspend", "budget summary", "trend", "breakdown", "forecast", "cash flow"},
	// multi-step or sequenced instructions
	{" then ", "after that", "step by step", "one by one", "in that order"},
	// comparison and recommendation requests
	{"compare", " versus ", " vs ", "recommend", "suggest", "should i ", "which is better", "best way", "pros and cons"},
	// periodic reports
	{"report", "weekly summary", "monthly summary", "summary of my week", "summary of my month", "recap"},
}

// Classify maps a user message to the tier that should serve it.
func (r *Router) Classify(text string) Tier {
	// Surrounding spaces let word-boundary keywords match at the edges.
	padded := " " + strings.ToLower(text) + " "
	for _, group := range smartKeywordGroups {
		for _, keyword := range group {
			if strings.Contains(padded, keyword) {
				return TierSmart
			}
		}
	}
	return TierFast
}
