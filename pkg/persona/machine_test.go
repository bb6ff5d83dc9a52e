package persona_test

import (
	"math/rand"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/persona"
)

func newMachine(t *testing.T, seed int64) *persona.Machine {
	t.Helper()
	m, err := persona.New(persona.WithRand(rand.New(rand.NewSource(seed))))
	gt.NoError(t, err)
	return m
}

func TestInitialState(t *testing.T) {
	m := newMachine(t, 1)

	state := m.State()
	gt.Equal(t, state.Mood, model.MoodContemplative)
	gt.Equal(t, state.Intensity, 0.7)
	gt.Equal(t, state.RemainingDuration, 3)
}

func TestTriggerTable(t *testing.T) {
	m := newMachine(t, 1)

	cases := []struct {
		input string
		want  model.Mood
	}{
		{"that is amazing!", model.MoodExcited},
		{"do you remember the old days", model.MoodNostalgic},
		{"that myth is wrong", model.MoodProtective},
		{"explain hieroglyphs to me", model.MoodTeaching},
		{"the sacred mysteries", model.MoodMystical},
		{"I seek your wisdom", model.MoodWise},
		{"we celebrate today", model.MoodJoyful},
		{"so much was lost", model.MoodSorrowful},
		{"nice weather today", model.MoodContemplative},
	}
	for _, tc := range cases {
		gt.Equal(t, m.Trigger(tc.input), tc.want)
	}
}

func TestTriggerOrderPrecedence(t *testing.T) {
	m := newMachine(t, 1)

	// "amazing" (excited) outranks "how" (teaching)
	gt.Equal(t, m.Trigger("how amazing is that"), model.MoodExcited)
}

func TestRepeatedTriggerHoldsState(t *testing.T) {
	m := newMachine(t, 1)

	// Repeating the current mood within its duration never transitions
	for i := 0; i < 3; i++ {
		gt.False(t, m.Step(model.MoodContemplative, 0.5))
	}
	gt.Equal(t, m.State().Mood, model.MoodContemplative)
}

func TestForcedTransitionAboveThreshold(t *testing.T) {
	m := newMachine(t, 1)

	// Sorrowful is unreachable from contemplative via the matrix, but a
	// strong trigger forces it
	gt.True(t, m.Step(model.MoodSorrowful, 0.9))

	state := m.State()
	gt.Equal(t, state.Mood, model.MoodSorrowful)
	gt.Equal(t, state.Intensity, 0.9)
	gt.True(t, state.RemainingDuration >= 2)
	gt.True(t, state.RemainingDuration <= 5)
}

func TestNoForcedTransitionAtThreshold(t *testing.T) {
	m := newMachine(t, 1)

	// Intensity exactly at the threshold does not force; sorrowful has
	// no matrix row from contemplative either
	gt.False(t, m.Step(model.MoodSorrowful, 0.8))
	gt.Equal(t, m.State().Mood, model.MoodContemplative)
}

func TestMatrixTransitionsAreSeeded(t *testing.T) {
	a := newMachine(t, 42)
	b := newMachine(t, 42)

	// Same seed, same trigger sequence, same mood walk
	inputs := []model.Mood{
		model.MoodWise, model.MoodTeaching, model.MoodMystical,
		model.MoodNostalgic, model.MoodWise, model.MoodTeaching,
	}
	for _, mood := range inputs {
		gt.Equal(t, a.Step(mood, 0.7), b.Step(mood, 0.7))
		gt.Equal(t, a.State(), b.State())
	}
}

func TestHistoryRecordsTransitions(t *testing.T) {
	m := newMachine(t, 1)

	gt.True(t, m.Step(model.MoodExcited, 0.95))
	gt.True(t, m.Step(model.MoodMelancholic, 0.95))

	moods := m.RecentMoods(5)
	gt.A(t, moods).Length(2)
	gt.Equal(t, moods[0], model.MoodContemplative)
	gt.Equal(t, moods[1], model.MoodExcited)
}

func TestReset(t *testing.T) {
	m := newMachine(t, 1)

	gt.True(t, m.Step(model.MoodSorrowful, 0.95))
	m.Reset()

	state := m.State()
	gt.Equal(t, state.Mood, model.MoodContemplative)
	gt.Equal(t, state.Intensity, 0.7)
}

func TestExpressionsFallBackToContemplative(t *testing.T) {
	m := newMachine(t, 1)

	// Peaceful has no expression patterns of its own
	gt.True(t, m.Step(model.MoodPeaceful, 0.95))

	expr := m.Expressions()
	gt.A(t, expr.Openings).Longer(0)
	gt.Equal(t, expr.Openings[0], "In the depths of contemplation...")
}

func TestModifierMatchesMood(t *testing.T) {
	m := newMachine(t, 1)
	gt.Equal(t, m.Modifier(), "deeply contemplative")

	gt.True(t, m.Step(model.MoodSorrowful, 0.81))
	gt.Equal(t, m.Modifier(), "with deep grief")
}

func TestStyler(t *testing.T) {
	var styler persona.Styler

	gt.Equal(t, styler.ForUser("academic", model.MoodWise), persona.VariantWiseScholar)
	gt.Equal(t, styler.ForUser("casual", model.MoodWise), persona.VariantCasualStoryteller)
	gt.Equal(t, styler.ForUser("curious", model.MoodWise), persona.VariantMysticalOracle)
	gt.Equal(t, styler.ForUser("academic", model.MoodProtective), persona.VariantProtectiveGuardian)

	cfg := styler.Config(persona.VariantWiseScholar)
	gt.Equal(t, cfg.Tone, "scholarly and precise")
	gt.A(t, cfg.Openings).Length(3)
}
