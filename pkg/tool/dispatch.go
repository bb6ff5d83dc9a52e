package tool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/utils/logging"
	"golang.org/x/sync/semaphore"
)

// Outcome is the result of one dispatched tool call. Exactly one of
// Result or Error is empty.
type Outcome struct {
	Tool    string
	Query   string
	Result  string
	Error   string
	Latency time.Duration
	Success bool
	Cached  bool
}

// DispatchConfig bounds one dispatch batch
type DispatchConfig struct {
	CallTimeout time.Duration // per tool call
	MaxInFlight int64         // simultaneous adapter calls
	CacheTTL    time.Duration // successful result reuse window
}

// DefaultDispatchConfig returns the defaults used by the agent
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		CallTimeout: 10 * time.Second,
		MaxInFlight: 2,
		CacheTTL:    5 * time.Minute,
	}
}

// Dispatch executes the named adapters concurrently, each under its own
// timeout, with at most MaxInFlight calls running at once. It always
// returns one outcome per requested name, success or failure; a slow or
// stuck adapter never blocks its siblings beyond its own timeout.
func (r *Registry) Dispatch(ctx context.Context, names []string, input string, rr *model.ReasoningResult) []Outcome {
	outcomes := make([]Outcome, len(names))
	sem := semaphore.NewWeighted(r.cfg.MaxInFlight)
	var wg sync.WaitGroup

	for i, name := range names {
		query := PrepareQuery(name, input, rr)
		outcomes[i] = Outcome{Tool: name, Query: query}

		t, ok := r.Get(name)
		if !ok || !r.enabled[name] {
			outcomes[i].Error = "tool not available"
			continue
		}

		if result, hit := r.cache.Get(name, query, time.Now()); hit {
			outcomes[i].Result = result
			outcomes[i].Success = true
			outcomes[i].Cached = true
			continue
		}

		wg.Add(1)
		go func(i int, name, query string, t Tool) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i].Error = "dispatch canceled"
				return
			}
			defer sem.Release(1)

			callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
			defer cancel()

			type callResult struct {
				result string
				err    error
			}
			done := make(chan callResult, 1)

			start := time.Now()
			go func() {
				result, err := t.Execute(callCtx, query)
				done <- callResult{result: result, err: err}
			}()

			var result string
			var err error
			select {
			case cr := <-done:
				result, err = cr.result, cr.err
			case <-callCtx.Done():
				// the adapter ignored its deadline; abandon the call
				err = callCtx.Err()
			}
			latency := time.Since(start)
			outcomes[i].Latency = latency

			switch {
			case err != nil && errors.Is(err, context.DeadlineExceeded):
				outcomes[i].Error = "timeout"
			case err != nil:
				outcomes[i].Error = err.Error()
			case result == "":
				outcomes[i].Error = "empty result"
			default:
				outcomes[i].Result = result
				outcomes[i].Success = true
				r.cache.Put(name, query, result, time.Now())
			}

			r.recordCall(name, latency, outcomes[i].Success)
			if !outcomes[i].Success {
				logging.From(ctx).Warn("tool call failed",
					"tool", name,
					"reason", outcomes[i].Error,
					"latency", latency,
				)
			}
		}(i, name, query, t)
	}

	wg.Wait()
	return outcomes
}

// Execute runs a single named adapter directly, bypassing selection but
// not the cache or stats
func (r *Registry) Execute(ctx context.Context, name, query string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", errToolNotFound
	}

	if result, hit := r.cache.Get(name, query, time.Now()); hit {
		return result, nil
	}

	start := time.Now()
	result, err := t.Execute(ctx, query)
	r.recordCall(name, time.Since(start), err == nil)
	if err != nil {
		return "", err
	}
	r.cache.Put(name, query, result, time.Now())
	return result, nil
}
