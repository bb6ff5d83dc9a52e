package tool

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var errToolNotFound = goerr.New("tool not found")

// Selection weights over relevance, reliability prior, observed success
// rate and cost. They must sum to 1 so composite scores stay in [0,1].
const (
	weightRelevance   = 0.4
	weightReliability = 0.3
	weightPerformance = 0.2
	weightCost        = 0.1

	minRelevance = 0.1
)

type toolStats struct {
	calls        int
	failures     int
	totalLatency time.Duration
}

func (s toolStats) successRate() float64 {
	if s.calls == 0 {
		return 0.5 // no evidence yet, neutral prior
	}
	return float64(s.calls-s.failures) / float64(s.calls)
}

// Registry holds all tool adapters and scores them against queries.
// Selection is pure over (query, reasoning result, registry state) so
// identical inputs always yield the identical ordered tool list.
type Registry struct {
	tools   map[string]Tool
	order   []string
	enabled map[string]bool

	maxTools int
	cfg      DispatchConfig
	cache    *resultCache

	mu    sync.Mutex
	stats map[string]*toolStats
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithMaxTools caps how many adapters one turn may select
func WithMaxTools(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxTools = n
		}
	}
}

// WithDispatchConfig overrides dispatch timeouts and concurrency
func WithDispatchConfig(cfg DispatchConfig) RegistryOption {
	return func(r *Registry) {
		r.cfg = cfg
	}
}

// New creates a registry with the given adapters registered in order
func New(tools []Tool, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		tools:    map[string]Tool{},
		enabled:  map[string]bool{},
		maxTools: 3,
		cfg:      DefaultDispatchConfig(),
		stats:    map[string]*toolStats{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = newResultCache(r.cfg.CacheTTL)

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an adapter; duplicate names are rejected
func (r *Registry) Register(t Tool) error {
	meta := t.Metadata()
	if meta.Name == "" {
		return goerr.New("tool name is required")
	}
	if _, ok := r.tools[meta.Name]; ok {
		return goerr.New("duplicate tool name", goerr.V("name", meta.Name))
	}
	r.tools[meta.Name] = t
	r.order = append(r.order, meta.Name)
	r.stats[meta.Name] = &toolStats{}
	return nil
}

// Init probes every adapter and records which are usable
func (r *Registry) Init(ctx context.Context) error {
	for _, name := range r.order {
		ok, err := r.tools[name].Init(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to initialize tool", goerr.V("name", name))
		}
		r.enabled[name] = ok
		if !ok {
			logging.From(ctx).Debug("tool disabled", "name", name)
		}
	}
	return nil
}

// Flags returns all adapter flags combined
func (r *Registry) Flags() []cli.Flag {
	var flags []cli.Flag
	for _, name := range r.order {
		if f := r.tools[name].Flags(); f != nil {
			flags = append(flags, f...)
		}
	}
	return flags
}

// Get returns a registered adapter by name
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns enabled adapter names in registration order
func (r *Registry) Names() []string {
	var names []string
	for _, name := range r.order {
		if r.enabled[name] {
			names = append(names, name)
		}
	}
	return names
}

func costScore(class string) float64 {
	switch class {
	case "free":
		return 1.0
	case "low":
		return 0.8
	case "medium":
		return 0.6
	case "high":
		return 0.4
	default:
		return 0.5
	}
}

// Select returns the ordered adapters for a query. Tools the reasoning
// engine asked for come first in its order; remaining slots are filled
// by composite score, ties broken by name so the result is stable.
func (r *Registry) Select(query string, rr *model.ReasoningResult) []string {
	selected := make([]string, 0, r.maxTools)
	taken := map[string]bool{}

	if rr != nil {
		for _, name := range rr.ToolsToUse {
			if len(selected) >= r.maxTools {
				break
			}
			if r.enabled[name] && !taken[name] {
				selected = append(selected, name)
				taken[name] = true
			}
		}
	}

	type scored struct {
		name  string
		score float64
	}
	var candidates []scored

	r.mu.Lock()
	for _, name := range r.order {
		if !r.enabled[name] || taken[name] {
			continue
		}
		meta := r.tools[name].Metadata()
		relevance := meta.Score(query)
		if relevance < minRelevance {
			continue
		}
		score := relevance*weightRelevance +
			meta.Reliability*weightReliability +
			r.stats[name].successRate()*weightPerformance +
			costScore(meta.CostClass)*weightCost
		candidates = append(candidates, scored{name, score})
	}
	r.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	for _, c := range candidates {
		if len(selected) >= r.maxTools {
			break
		}
		selected = append(selected, c.name)
	}
	return selected
}

// Health returns per-tool aggregate counters for the status surface
func (r *Registry) Health() []model.ToolHealth {
	r.mu.Lock()
	defer r.mu.Unlock()

	health := make([]model.ToolHealth, 0, len(r.order))
	for _, name := range r.order {
		s := r.stats[name]
		h := model.ToolHealth{
			Name:        name,
			Category:    string(r.tools[name].Metadata().Category),
			Calls:       s.calls,
			Failures:    s.failures,
			SuccessRate: s.successRate(),
		}
		if s.calls > 0 {
			h.AvgLatencyMS = s.totalLatency.Milliseconds() / int64(s.calls)
		}
		health = append(health, h)
	}
	return health
}

func (r *Registry) recordCall(name string, latency time.Duration, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[name]
	if !ok {
		return
	}
	s.calls++
	s.totalLatency += latency
	if !success {
		s.failures++
	}
}
