package persona

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/model"
)

const (
	defaultIntensity = 0.7
	defaultDuration  = 3

	// Beyond this a trigger overrides the transition matrix
	forcedTransitionThreshold = 0.8

	maxHistory = 20
)

// transitionMatrix gives the probability of moving from the current mood
// to a triggered one. Moods absent from a row can only be reached by a
// forced transition.
var transitionMatrix = map[model.Mood]map[model.Mood]float64{
	model.MoodContemplative: {
		model.MoodWise:      0.3,
		model.MoodNostalgic: 0.2,
		model.MoodMystical:  0.2,
		model.MoodTeaching:  0.2,
		model.MoodPeaceful:  0.1,
	},
	model.MoodNostalgic: {
		model.MoodMelancholic:   0.3,
		model.MoodContemplative: 0.2,
		model.MoodSorrowful:     0.2,
		model.MoodWise:          0.2,
		model.MoodJoyful:        0.1,
	},
	model.MoodExcited: {
		model.MoodJoyful:        0.4,
		model.MoodProud:         0.3,
		model.MoodTeaching:      0.2,
		model.MoodContemplative: 0.1,
	},
	model.MoodProtective: {
		model.MoodWise:          0.3,
		model.MoodTeaching:      0.3,
		model.MoodAncient:       0.2,
		model.MoodContemplative: 0.2,
	},
	model.MoodMystical: {
		model.MoodAncient:       0.3,
		model.MoodWise:          0.3,
		model.MoodContemplative: 0.2,
		model.MoodPeaceful:      0.2,
	},
	model.MoodTeaching: {
		model.MoodWise:          0.4,
		model.MoodProud:         0.2,
		model.MoodContemplative: 0.2,
		model.MoodCurious:       0.2,
	},
	model.MoodWise: {
		model.MoodContemplative: 0.3,
		model.MoodAncient:       0.3,
		model.MoodPeaceful:      0.2,
		model.MoodTeaching:      0.2,
	},
	model.MoodJoyful: {
		model.MoodExcited:       0.3,
		model.MoodProud:         0.3,
		model.MoodContemplative: 0.2,
		model.MoodPeaceful:      0.2,
	},
}

// triggerTable maps input keywords to the mood they evoke. Order matters:
// the first matching row wins.
var triggerTable = []struct {
	mood     model.Mood
	keywords []string
}{
	{model.MoodExcited, []string{"amazing", "incredible", "wonderful", "fantastic"}},
	{model.MoodNostalgic, []string{"remember", "back then", "ancient times", "old days"}},
	{model.MoodProtective, []string{"wrong", "false", "incorrect", "myth", "legend"}},
	{model.MoodTeaching, []string{"explain", "teach", "how", "why", "what"}},
	{model.MoodMystical, []string{"mystery", "magical", "divine", "sacred", "cosmic"}},
	{model.MoodWise, []string{"wisdom", "advice", "guidance", "understanding"}},
	{model.MoodJoyful, []string{"happy", "joy", "celebrate", "success"}},
	{model.MoodSorrowful, []string{"sad", "tragic", "lost", "destroyed", "gone"}},
}

type historyEntry struct {
	Mood      model.Mood
	Intensity float64
	Held      int
}

// Machine is the probabilistic mood state machine. All methods are safe
// for concurrent use.
type Machine struct {
	mu sync.Mutex

	current   model.Mood
	intensity float64
	duration  int
	held      int

	history []historyEntry

	rng  *rand.Rand
	data *expressionData
}

type Option func(*Machine)

// WithRand replaces the random source, mainly for deterministic tests
func WithRand(rng *rand.Rand) Option {
	return func(m *Machine) {
		m.rng = rng
	}
}

// New creates a mood machine starting in the contemplative state
func New(opts ...Option) (*Machine, error) {
	data, err := loadExpressionData()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load persona expressions")
	}

	m := &Machine{
		current:   model.MoodContemplative,
		intensity: defaultIntensity,
		duration:  defaultDuration,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		data:      data,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Trigger returns the mood evoked by the input, contemplative when
// nothing matches
func (m *Machine) Trigger(input string) model.Mood {
	inputLower := strings.ToLower(input)
	for _, row := range triggerTable {
		for _, kw := range row.keywords {
			if strings.Contains(inputLower, kw) {
				return row.mood
			}
		}
	}
	return model.MoodContemplative
}

// Step advances the machine with a triggered mood and its intensity.
// It reports whether a transition happened. Repeating the current mood
// within its hold duration never transitions; a trigger stronger than
// the forced threshold always does.
func (m *Machine) Step(triggered model.Mood, intensity float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if triggered == m.current && m.held < m.duration {
		m.held++
		return false
	}

	if transitions, ok := transitionMatrix[m.current]; ok {
		if p, ok := transitions[triggered]; ok {
			adjusted := p * (0.5 + intensity*0.5)
			if m.rng.Float64() < adjusted {
				m.transition(triggered, intensity)
				return true
			}
		}
	}

	if intensity > forcedTransitionThreshold {
		m.transition(triggered, intensity)
		return true
	}

	return false
}

// caller holds m.mu
func (m *Machine) transition(next model.Mood, intensity float64) {
	m.history = append(m.history, historyEntry{
		Mood:      m.current,
		Intensity: m.intensity,
		Held:      m.held,
	})
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}

	m.current = next
	m.intensity = intensity
	m.duration = m.rng.Intn(4) + 2
	m.held = 0
}

// State returns a snapshot of the current mood
func (m *Machine) State() model.MoodState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return model.MoodState{
		Mood:              m.current,
		Intensity:         m.intensity,
		RemainingDuration: m.duration - m.held,
	}
}

// RecentMoods returns up to the last n moods the machine passed through
func (m *Machine) RecentMoods(n int) []model.Mood {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := len(m.history) - n
	if start < 0 {
		start = 0
	}
	moods := make([]model.Mood, 0, len(m.history)-start)
	for _, e := range m.history[start:] {
		moods = append(moods, e.Mood)
	}
	return moods
}

// Expressions returns the phrasing patterns for the current mood,
// falling back to contemplative for moods without their own patterns
func (m *Machine) Expressions() Expressions {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expr, ok := m.data.Expressions[m.current]; ok {
		return expr
	}
	return m.data.Expressions[model.MoodContemplative]
}

// Memory picks a remembered experience tied to the current mood, empty
// when the mood has none
func (m *Machine) Memory() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	memories := m.data.Memories[m.current]
	if len(memories) == 0 {
		return ""
	}
	return memories[m.rng.Intn(len(memories))]
}

// Modifier describes the tone of the current mood, scaled by intensity
func (m *Machine) Modifier() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	pair, ok := m.data.Modifiers[m.current]
	if !ok {
		return "with ancient dignity"
	}
	if m.intensity < 0.5 {
		return pair.Low
	}
	return pair.High
}

// Reset returns the machine to its initial contemplative state
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = model.MoodContemplative
	m.intensity = defaultIntensity
	m.duration = defaultDuration
	m.held = 0
}
