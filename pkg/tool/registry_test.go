package tool_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/urfave/cli/v3"
)

type fakeTool struct {
	meta    tool.Metadata
	initOK  bool
	calls   atomic.Int32
	execute func(ctx context.Context, query string) (string, error)
}

func (x *fakeTool) Metadata() tool.Metadata { return x.meta }
func (x *fakeTool) Flags() []cli.Flag       { return nil }
func (x *fakeTool) Init(ctx context.Context) (bool, error) {
	return x.initOK, nil
}
func (x *fakeTool) Execute(ctx context.Context, query string) (string, error) {
	x.calls.Add(1)
	return x.execute(ctx, query)
}

func newFakeTool(name string, keywords []string, reliability float64) *fakeTool {
	return &fakeTool{
		meta: tool.Metadata{
			Name:        name,
			Description: "test adapter for " + name,
			Category:    tool.CategoryResearch,
			Keywords:    keywords,
			Reliability: reliability,
			CostClass:   "free",
		},
		initOK: true,
		execute: func(ctx context.Context, query string) (string, error) {
			return "result from " + name, nil
		},
	}
}

func TestSelectPrefersRequestedTools(t *testing.T) {
	ctx := context.Background()

	a := newFakeTool("alpha", []string{"egypt"}, 0.9)
	b := newFakeTool("beta", []string{"egypt"}, 0.5)
	registry, err := tool.New([]tool.Tool{a, b})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	rr := &model.ReasoningResult{ToolsToUse: []string{"beta"}}
	selected := registry.Select("tell me about egypt", rr)

	gt.A(t, selected).Longer(0)
	gt.Equal(t, selected[0], "beta")
}

func TestSelectIsDeterministic(t *testing.T) {
	ctx := context.Background()

	// Identical metadata, so scores tie and names break the tie
	a := newFakeTool("zeta", []string{"egypt"}, 0.8)
	b := newFakeTool("alpha", []string{"egypt"}, 0.8)
	registry, err := tool.New([]tool.Tool{a, b})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	first := registry.Select("egypt history", nil)
	for i := 0; i < 10; i++ {
		gt.Equal(t, registry.Select("egypt history", nil), first)
	}
	gt.A(t, first).Length(2)
	gt.Equal(t, first[0], "alpha")
	gt.Equal(t, first[1], "zeta")
}

func TestSelectSkipsIrrelevantTools(t *testing.T) {
	ctx := context.Background()

	a := newFakeTool("relevant", []string{"pyramid"}, 0.8)
	b := newFakeTool("unrelated", []string{"weather"}, 0.8)
	registry, err := tool.New([]tool.Tool{a, b})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	selected := registry.Select("who built the great pyramid", nil)
	gt.A(t, selected).Length(1)
	gt.Equal(t, selected[0], "relevant")
}

func TestSelectRespectsMaxTools(t *testing.T) {
	ctx := context.Background()

	tools := []tool.Tool{
		newFakeTool("one", []string{"egypt"}, 0.9),
		newFakeTool("two", []string{"egypt"}, 0.8),
		newFakeTool("three", []string{"egypt"}, 0.7),
	}
	registry, err := tool.New(tools, tool.WithMaxTools(2))
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	gt.A(t, registry.Select("egypt", nil)).Length(2)
}

func TestSelectExcludesDisabledTools(t *testing.T) {
	ctx := context.Background()

	a := newFakeTool("up", []string{"egypt"}, 0.8)
	b := newFakeTool("down", []string{"egypt"}, 0.8)
	b.initOK = false
	registry, err := tool.New([]tool.Tool{a, b})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	gt.Equal(t, registry.Names(), []string{"up"})

	rr := &model.ReasoningResult{ToolsToUse: []string{"down"}}
	selected := registry.Select("egypt", rr)
	gt.A(t, selected).Length(1)
	gt.Equal(t, selected[0], "up")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	a := newFakeTool("dup", []string{"egypt"}, 0.8)
	b := newFakeTool("dup", []string{"nile"}, 0.5)
	_, err := tool.New([]tool.Tool{a, b})
	gt.Error(t, err)
}

func TestHealthNeutralPrior(t *testing.T) {
	ctx := context.Background()

	a := newFakeTool("fresh", []string{"egypt"}, 0.8)
	registry, err := tool.New([]tool.Tool{a})
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	health := registry.Health()
	gt.A(t, health).Length(1)
	gt.Equal(t, health[0].Calls, 0)
	gt.Equal(t, health[0].SuccessRate, 0.5)
}
