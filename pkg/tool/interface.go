package tool

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"
)

// Category groups adapters for selection scoring
type Category string

const (
	CategoryResearch   Category = "research"
	CategoryHistorical Category = "historical"
	CategoryLinguistic Category = "linguistic"
	CategoryMemory     Category = "memory"
)

// Metadata declares an adapter's selection characteristics. It is used
// purely for scoring; the dispatcher never inspects adapter internals.
type Metadata struct {
	Name         string
	Description  string
	Category     Category
	Keywords     []string
	Reliability  float64 // prior in [0,1]
	CostClass    string  // free, low, medium, high
	LatencyClass string  // fast, medium, slow
}

// Score computes query relevance in [0,1]: the fraction of declared
// keywords present in the query (weight 0.6) plus the fraction of query
// words found in the description (weight 0.4).
func (m Metadata) Score(query string) float64 {
	queryLower := strings.ToLower(query)

	score := 0.0
	if len(m.Keywords) > 0 {
		matches := 0
		for _, kw := range m.Keywords {
			if strings.Contains(queryLower, strings.ToLower(kw)) {
				matches++
			}
		}
		score += float64(matches) / float64(len(m.Keywords)) * 0.6
	}

	queryWords := strings.Fields(queryLower)
	if len(queryWords) > 0 {
		descLower := " " + strings.ToLower(m.Description) + " "
		matches := 0
		for _, w := range queryWords {
			if strings.Contains(descLower, " "+w+" ") {
				matches++
			}
		}
		score += float64(matches) / float64(len(queryWords)) * 0.4
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Tool represents an external knowledge capability: a short textual
// query in, a textual result out
type Tool interface {
	// Metadata returns the adapter's declared selection metadata
	Metadata() Metadata

	// Execute runs the lookup. Implementations must honor ctx
	// cancellation; the dispatcher wraps each call in its own timeout.
	Execute(ctx context.Context, query string) (string, error)

	// Init reports whether the adapter is usable (e.g. required
	// configuration present). Disabled adapters stay registered but are
	// never selected.
	Init(ctx context.Context) (bool, error)

	// Flags returns CLI flags for this adapter, or nil
	Flags() []cli.Flag
}
