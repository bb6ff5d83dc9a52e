package memory_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/memory"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/repository"
)

func newStore(t *testing.T, cfg memory.Config) *memory.Store {
	t.Helper()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)
	store, err := memory.New(repo, cfg)
	gt.NoError(t, err)
	return store
}

func turnWith(input string, topics []string, tools []string) *model.Turn {
	return &model.Turn{
		ID:         model.NewTurnID(),
		UserID:     "u1",
		Timestamp:  time.Now(),
		UserInput:  input,
		AgentReply: "a reply",
		Topics:     topics,
		ToolsUsed:  tools,
	}
}

func TestStartSessionCreatesProfile(t *testing.T) {
	store := newStore(t, memory.DefaultConfig())

	profile := store.StartSession("u1")
	gt.Equal(t, profile.UserID, "u1")
	gt.Equal(t, profile.InteractionStyle, "curious")
	gt.Equal(t, profile.TotalTurns, 0)

	stats := store.Stats()
	gt.Equal(t, stats.UserProfiles, 1)
}

func TestRecordUpdatesProfileAndTopics(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, memory.DefaultConfig())
	store.StartSession("u1")

	store.Record(ctx, turnWith("hi", []string{"ancient_egypt", "languages"}, nil))

	mc := store.Context()
	gt.A(t, mc.Recent).Length(1)
	gt.Equal(t, mc.Topics, []string{"ancient_egypt", "languages"})
	gt.V(t, mc.Profile).NotNil()
	gt.Equal(t, mc.Profile.TotalTurns, 1)
	gt.Equal(t, mc.Profile.TopicFrequency["languages"], 1)
}

func TestShortTermArchivesBeforeOverflow(t *testing.T) {
	ctx := context.Background()
	cfg := memory.DefaultConfig()
	cfg.MaxShortTerm = 10
	store := newStore(t, cfg)
	store.StartSession("u1")

	// The eighth turn crosses 0.8 of the bound and triggers archiving
	for i := 0; i < 7; i++ {
		store.Record(ctx, turnWith(fmt.Sprintf("turn %d", i), nil, nil))
		gt.Equal(t, store.Stats().LongTermSummaries, 0)
	}
	store.Record(ctx, turnWith("turn 7", []string{"history"}, nil))

	stats := store.Stats()
	gt.Equal(t, stats.ShortTermTurns, 0)
	gt.Equal(t, stats.LongTermSummaries, 1)
	gt.Equal(t, stats.CurrentTopics, 0)

	summaries := store.LongTermSummaries()
	gt.A(t, summaries).Length(1)
	gt.True(t, strings.Contains(summaries[0], "history"))
}

func TestMemorablePromotion(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, memory.DefaultConfig())
	store.StartSession("u1")

	// Two signals: core keyword in input plus multiple tools
	turn := turnWith("tell me about egypt", []string{"ancient_egypt"},
		[]string{"wikipedia", "egyptian_knowledge"})
	store.Record(ctx, turn)

	gt.Equal(t, store.Stats().MemorableSummaries, 1)

	mc := store.Context()
	gt.A(t, mc.Memorable).Longer(0)
	gt.True(t, strings.Contains(mc.Memorable[0], "ancient_egypt"))
}

func TestUnremarkableTurnIsNotPromoted(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, memory.DefaultConfig())
	store.StartSession("u1")

	store.Record(ctx, turnWith("hello there", nil, nil))
	gt.Equal(t, store.Stats().MemorableSummaries, 0)
}

func TestMemorableThresholdIsConfigurable(t *testing.T) {
	ctx := context.Background()
	cfg := memory.DefaultConfig()
	cfg.MemorableThreshold = 1
	store := newStore(t, cfg)
	store.StartSession("u1")

	// A single signal now suffices
	store.Record(ctx, turnWith("tell me about egypt", nil, nil))
	gt.Equal(t, store.Stats().MemorableSummaries, 1)
}

func TestInteractionStyle(t *testing.T) {
	store := newStore(t, memory.DefaultConfig())

	gt.False(t, store.SetInteractionStyle("academic"))
	gt.Equal(t, store.InteractionStyle(), "")

	store.StartSession("u1")
	gt.True(t, store.SetInteractionStyle("academic"))
	gt.Equal(t, store.InteractionStyle(), "academic")
}

func TestFlushAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)

	store, err := memory.New(repo, memory.DefaultConfig())
	gt.NoError(t, err)
	store.StartSession("u1")
	store.SetInteractionStyle("casual")
	store.Record(ctx, turnWith("tell me about egypt", []string{"ancient_egypt"},
		[]string{"wikipedia", "egyptian_knowledge"}))
	gt.NoError(t, store.Flush(ctx))

	restored, err := memory.New(repo, memory.DefaultConfig())
	gt.NoError(t, err)
	gt.NoError(t, restored.Load(ctx))

	profile := restored.StartSession("u1")
	gt.Equal(t, profile.InteractionStyle, "casual")
	gt.Equal(t, profile.TotalTurns, 1)
	gt.Equal(t, restored.Stats().MemorableSummaries, 1)
}

func TestConfigValidation(t *testing.T) {
	repo, err := repository.NewLocal(t.TempDir())
	gt.NoError(t, err)

	_, err = memory.New(repo, memory.Config{MaxShortTerm: 0, MaxLongTerm: 10})
	gt.Error(t, err)

	_, err = memory.New(repo, memory.Config{MaxShortTerm: 10, MaxLongTerm: 0})
	gt.Error(t, err)
}
