package agent_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/memory"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/persona"
	"github.com/m-mizutani/rosetta/pkg/repository"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/m-mizutani/rosetta/pkg/usecase/agent"
	"github.com/urfave/cli/v3"
)

type stubTool struct {
	name     string
	keywords []string
	result   string
}

func (x *stubTool) Metadata() tool.Metadata {
	return tool.Metadata{
		Name:        x.name,
		Description: "stub adapter for " + x.name,
		Category:    tool.CategoryResearch,
		Keywords:    x.keywords,
		Reliability: 0.9,
		CostClass:   "free",
	}
}
func (x *stubTool) Flags() []cli.Flag                      { return nil }
func (x *stubTool) Init(ctx context.Context) (bool, error) { return true, nil }
func (x *stubTool) Execute(ctx context.Context, query string) (string, error) {
	return x.result, nil
}

func newAgent(t *testing.T, tools ...tool.Tool) *agent.Agent {
	t.Helper()
	ctx := context.Background()

	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)
	store, err := memory.New(repo, memory.DefaultConfig())
	gt.NoError(t, err)
	mood, err := persona.New()
	gt.NoError(t, err)
	registry, err := tool.New(tools)
	gt.NoError(t, err)
	gt.NoError(t, registry.Init(ctx))

	return agent.New(nil, registry, store, mood)
}

func TestProcessTurnDegradesWithoutLLM(t *testing.T) {
	ctx := context.Background()
	ag := newAgent(t)
	ag.StartSession(ctx, "u1")

	resp := ag.ProcessTurn(ctx, "Who was Ptolemy V?")

	gt.V(t, resp).NotNil()
	gt.NoError(t, resp.Err)
	gt.NotEqual(t, resp.Reply, "")
	gt.V(t, resp.Trace).NotNil()
	gt.Number(t, resp.Confidence).GreaterOrEqual(0.5)

	// Synthesis without a model falls back, which counts as a degraded turn
	status := ag.Status()
	gt.Equal(t, status.TotalTurns, 1)
	gt.Number(t, status.ErrorCount).GreaterOrEqual(1)
}

func TestProcessTurnDispatchesTools(t *testing.T) {
	ctx := context.Background()
	wiki := &stubTool{
		name:     tool.NameWikipedia,
		keywords: []string{"ptolemy", "history"},
		result:   "Ptolemy V Epiphanes ruled Egypt from 204 BCE.",
	}
	ag := newAgent(t, wiki)
	ag.StartSession(ctx, "u1")

	resp := ag.ProcessTurn(ctx, "Who was Ptolemy V?")

	gt.A(t, resp.ToolsUsed).Longer(0)
	gt.Equal(t, resp.ToolsUsed[0], tool.NameWikipedia)

	health := ag.Status().ToolHealth
	gt.A(t, health).Length(1)
	gt.Equal(t, health[0].Calls, 1)
}

func TestProcessTurnRecordsMemory(t *testing.T) {
	ctx := context.Background()
	ag := newAgent(t)
	ag.StartSession(ctx, "u1")

	ag.ProcessTurn(ctx, "Tell me about the pyramids of ancient egypt")

	stats := ag.Status().MemoryStats
	gt.Equal(t, stats.ShortTermTurns, 1)
	gt.Equal(t, stats.UserProfiles, 1)
}

func TestHelpCommand(t *testing.T) {
	ctx := context.Background()
	ag := newAgent(t)
	ag.StartSession(ctx, "u1")

	resp := ag.ProcessTurn(ctx, "/help")

	gt.S(t, resp.Reply).Contains("/persona")
	gt.Equal(t, resp.Confidence, 1.0)
	gt.Equal(t, resp.Metadata["command"], "help")

	// Commands are not conversation turns
	gt.Equal(t, ag.Status().TotalTurns, 0)
}

func TestPersonaCommand(t *testing.T) {
	ctx := context.Background()
	ag := newAgent(t)

	// No session yet, the switch has nowhere to land
	resp := ag.ProcessTurn(ctx, "/persona academic")
	gt.S(t, resp.Reply).Contains("No session active")

	ag.StartSession(ctx, "u1")

	resp = ag.ProcessTurn(ctx, "/persona academic")
	gt.S(t, resp.Reply).Contains("Very well")
	gt.Equal(t, resp.Metadata["command"], "persona_switch")

	resp = ag.ProcessTurn(ctx, "/persona")
	gt.S(t, resp.Reply).Contains("Current persona: academic")

	resp = ag.ProcessTurn(ctx, "/persona interpretive_dance")
	gt.S(t, resp.Reply).Contains("Usage: /persona")
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	ag := newAgent(t)

	gt.Equal(t, ag.Status().ActiveSession, "")

	info := ag.StartSession(ctx, "u1")
	gt.V(t, info).NotNil()
	gt.Equal(t, info.UserID, "u1")
	gt.NotEqual(t, info.SessionID, model.SessionID(""))

	gt.Equal(t, ag.Status().ActiveSession, string(info.SessionID))
}

func TestStatusMoodStartsContemplative(t *testing.T) {
	ag := newAgent(t)

	status := ag.Status()
	gt.Equal(t, status.Mood.Mood, model.MoodContemplative)
	gt.Equal(t, status.Mood.Intensity, 0.7)
}

func TestFlush(t *testing.T) {
	ctx := context.Background()
	ag := newAgent(t)
	ag.StartSession(ctx, "u1")
	ag.ProcessTurn(ctx, "Tell me about hieroglyphs")

	gt.NoError(t, ag.Flush(ctx))
}
