package tool_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/tool"
)

func TestDispatchTimeoutIsolation(t *testing.T) {
	ctx := context.Background()

	slow := newFakeTool("slow", []string{"egypt"}, 0.8)
	slow.execute = func(ctx context.Context, query string) (string, error) {
		select {
		case <-time.After(5 * time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	fast := newFakeTool("fast", []string{"egypt"}, 0.8)

	registry, err := tool.New([]tool.Tool{slow, fast}, tool.WithDispatchConfig(tool.DispatchConfig{
		CallTimeout: 50 * time.Millisecond,
		MaxInFlight: 2,
	}))
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	started := time.Now()
	outcomes := registry.Dispatch(ctx, []string{"slow", "fast"}, "egypt", nil)
	elapsed := time.Since(started)

	gt.A(t, outcomes).Length(2)
	gt.False(t, outcomes[0].Success)
	gt.Equal(t, outcomes[0].Error, "timeout")
	gt.True(t, outcomes[1].Success)
	gt.Equal(t, outcomes[1].Result, "result from fast")

	// The slow adapter's timeout bounds the batch, not its sleep
	gt.True(t, elapsed < 2*time.Second)
}

func TestDispatchAbandonsDeadlineIgnoringAdapter(t *testing.T) {
	ctx := context.Background()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	stuck := newFakeTool("stuck", []string{"egypt"}, 0.8)
	stuck.execute = func(ctx context.Context, query string) (string, error) {
		// never looks at ctx
		<-block
		return "too late", nil
	}

	registry, err := tool.New([]tool.Tool{stuck}, tool.WithDispatchConfig(tool.DispatchConfig{
		CallTimeout: 50 * time.Millisecond,
		MaxInFlight: 2,
	}))
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	started := time.Now()
	outcomes := registry.Dispatch(ctx, []string{"stuck"}, "egypt", nil)
	elapsed := time.Since(started)

	gt.A(t, outcomes).Length(1)
	gt.False(t, outcomes[0].Success)
	gt.Equal(t, outcomes[0].Error, "timeout")

	// Dispatch returns at the call timeout even though the adapter is
	// still blocked
	gt.True(t, elapsed < time.Second)
}

func TestDispatchFailureDoesNotPoisonSiblings(t *testing.T) {
	ctx := context.Background()

	broken := newFakeTool("broken", []string{"egypt"}, 0.8)
	broken.execute = func(ctx context.Context, query string) (string, error) {
		return "", goerr.New("upstream exploded")
	}
	healthy := newFakeTool("healthy", []string{"egypt"}, 0.8)

	registry, err := tool.New([]tool.Tool{broken, healthy})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	outcomes := registry.Dispatch(ctx, []string{"broken", "healthy"}, "egypt", nil)

	gt.A(t, outcomes).Length(2)
	gt.False(t, outcomes[0].Success)
	gt.S(t, outcomes[0].Error).Contains("upstream exploded")
	gt.True(t, outcomes[1].Success)
}

func TestDispatchEmptyResultIsFailure(t *testing.T) {
	ctx := context.Background()

	empty := newFakeTool("empty", []string{"egypt"}, 0.8)
	empty.execute = func(ctx context.Context, query string) (string, error) {
		return "", nil
	}

	registry, err := tool.New([]tool.Tool{empty})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	outcomes := registry.Dispatch(ctx, []string{"empty"}, "egypt", nil)
	gt.A(t, outcomes).Length(1)
	gt.False(t, outcomes[0].Success)
	gt.Equal(t, outcomes[0].Error, "empty result")
}

func TestDispatchCachesSuccessfulResults(t *testing.T) {
	ctx := context.Background()

	a := newFakeTool("cached", []string{"egypt"}, 0.8)
	registry, err := tool.New([]tool.Tool{a}, tool.WithDispatchConfig(tool.DispatchConfig{
		CallTimeout: time.Second,
		MaxInFlight: 2,
		CacheTTL:    time.Minute,
	}))
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	first := registry.Dispatch(ctx, []string{"cached"}, "egypt", nil)
	gt.True(t, first[0].Success)
	gt.False(t, first[0].Cached)

	second := registry.Dispatch(ctx, []string{"cached"}, "egypt", nil)
	gt.True(t, second[0].Success)
	gt.True(t, second[0].Cached)
	gt.Equal(t, second[0].Latency, time.Duration(0))

	gt.Equal(t, a.calls.Load(), int32(1))
}

func TestDispatchDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()

	flaky := newFakeTool("flaky", []string{"egypt"}, 0.8)
	flaky.execute = func(ctx context.Context, query string) (string, error) {
		return "", goerr.New("transient")
	}

	registry, err := tool.New([]tool.Tool{flaky}, tool.WithDispatchConfig(tool.DispatchConfig{
		CallTimeout: time.Second,
		MaxInFlight: 2,
		CacheTTL:    time.Minute,
	}))
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	registry.Dispatch(ctx, []string{"flaky"}, "egypt", nil)
	registry.Dispatch(ctx, []string{"flaky"}, "egypt", nil)

	gt.Equal(t, flaky.calls.Load(), int32(2))
}

func TestDispatchUnknownTool(t *testing.T) {
	ctx := context.Background()

	registry, err := tool.New(nil)
	gt.NoError(t, err)

	outcomes := registry.Dispatch(ctx, []string{"ghost"}, "egypt", nil)
	gt.A(t, outcomes).Length(1)
	gt.False(t, outcomes[0].Success)
	gt.Equal(t, outcomes[0].Error, "tool not available")
}

func TestExecuteRecordsStats(t *testing.T) {
	ctx := context.Background()

	a := newFakeTool("direct", []string{"egypt"}, 0.8)
	registry, err := tool.New([]tool.Tool{a})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	result, err := registry.Execute(ctx, "direct", "egypt")
	gt.NoError(t, err)
	gt.Equal(t, result, "result from direct")

	health := registry.Health()
	gt.A(t, health).Length(1)
	gt.Equal(t, health[0].Calls, 1)
	gt.Equal(t, health[0].Failures, 0)
}
