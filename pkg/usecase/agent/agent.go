package agent

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/adapter"
	"github.com/m-mizutani/rosetta/pkg/memory"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/persona"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/m-mizutani/rosetta/pkg/utils/logging"
)

const (
	defaultTurnDeadline = 30 * time.Second

	// snapshotEvery is the number of turns between mid-conversation
	// snapshot flushes
	snapshotEvery = 10
)

// Agent runs the thought, action, observation loop for each turn.
// Turns within one conversation are serialized; any collaborator may
// fail without taking down the turn, the reply degrades instead.
type Agent struct {
	mu sync.Mutex

	engine   *Engine
	synth    *Synthesizer
	registry *tool.Registry
	memory   *memory.Store
	mood     *persona.Machine

	deadline time.Duration

	session    *model.SessionInfo
	totalTurns int
	errorCount int
}

type Option func(*Agent)

// WithDeadline overrides the per-turn processing deadline
func WithDeadline(d time.Duration) Option {
	return func(x *Agent) {
		x.deadline = d
	}
}

func New(llm adapter.Gemini, registry *tool.Registry, store *memory.Store, mood *persona.Machine, opts ...Option) *Agent {
	x := &Agent{
		engine:   NewEngine(llm),
		synth:    NewSynthesizer(llm, mood),
		registry: registry,
		memory:   store,
		mood:     mood,
		deadline: defaultTurnDeadline,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// StartSession begins a conversation for a user and returns the
// session info
func (x *Agent) StartSession(ctx context.Context, userID string) *model.SessionInfo {
	x.mu.Lock()
	defer x.mu.Unlock()

	profile := x.memory.StartSession(userID)
	x.session = &model.SessionInfo{
		SessionID: model.NewSessionID(),
		UserID:    userID,
		StartedAt: time.Now(),
		Tools:     x.registry.Names(),
	}

	logging.From(ctx).Info("session started",
		"session_id", x.session.SessionID,
		"user_id", userID,
		"returning", profile.TotalTurns > 0)

	return x.session
}

// ProcessTurn handles one user input end to end. It always returns a
// response with a non-empty reply; when everything fails the reply is
// an in-voice apology and Err carries the cause.
func (x *Agent) ProcessTurn(ctx context.Context, input string) (resp *model.Response) {
	x.mu.Lock()
	defer x.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic while processing turn",
				"panic", r, "stack", string(debug.Stack()))
			err := goerr.New("panic in turn processing", goerr.V("panic", fmt.Sprint(r)))
			x.errorCount++
			resp = &model.Response{
				Reply: ErrorReply(err),
				Err:   err,
			}
		}
	}()

	if cmd, ok := x.handleCommand(input); ok {
		return cmd
	}

	ctx, cancel := context.WithTimeout(ctx, x.deadline)
	defer cancel()

	started := time.Now()
	x.totalTurns++

	mc := x.memory.Context()
	rr := x.engine.Analyze(ctx, input, mc)

	logging.From(ctx).Debug("reasoning complete",
		"trace_id", rr.ID,
		"type", rr.ReasoningType,
		"tools", rr.ToolsToUse,
		"confidence", rr.Confidence,
		"complexity", rr.Complexity)

	var outcomes []tool.Outcome
	if rr.ToolDecision != model.NoTools {
		names := x.registry.Select(input, rr)
		outcomes = x.registry.Dispatch(ctx, names, input, rr)
	}

	x.advanceMood(input, rr)

	reply, synthErr := x.synth.Synthesize(ctx, input, rr, outcomes, mc)
	if synthErr != nil {
		logging.From(ctx).Warn("synthesis degraded to fallback", "error", synthErr)
		x.errorCount++
	}

	topics := extractTopics(input, reply)
	state := x.mood.State()

	turn := &model.Turn{
		ID:           model.NewTurnID(),
		UserID:       x.currentUserID(),
		Timestamp:    time.Now(),
		UserInput:    input,
		AgentReply:   reply,
		ToolsUsed:    usedTools(outcomes),
		EmotionalTag: string(state.Mood),
		Topics:       topics,
		TraceID:      rr.ID,
	}
	x.memory.Record(ctx, turn)

	if x.totalTurns%snapshotEvery == 0 {
		if err := x.memory.Flush(ctx); err != nil {
			logging.From(ctx).Warn("failed to flush memory snapshot", "error", err)
		}
	}

	return &model.Response{
		Reply:        reply,
		Confidence:   rr.Confidence,
		ToolsUsed:    turn.ToolsUsed,
		EmotionalTag: turn.EmotionalTag,
		Topics:       topics,
		TimingMS:     time.Since(started).Milliseconds(),
		Trace:        rr,
		Metadata: map[string]any{
			"reasoning_steps": len(rr.Steps),
			"tool_results":    len(outcomes),
			"complexity":      rr.Complexity,
		},
	}
}

// advanceMood feeds the turn into the mood machine. Strong emotional
// context pushes intensity over the forced transition threshold.
func (x *Agent) advanceMood(input string, rr *model.ReasoningResult) {
	triggered := x.mood.Trigger(input)

	intensity := 0.7
	if rr.EmotionalContext != "" && rr.EmotionalContext != "neutral" {
		intensity = 0.85
	}

	x.mood.Step(triggered, intensity)
}

// Status reports agent health for the status command
func (x *Agent) Status() model.Status {
	x.mu.Lock()
	defer x.mu.Unlock()

	active := ""
	if x.session != nil {
		active = string(x.session.SessionID)
	}

	return model.Status{
		ActiveSession: active,
		Mood:          x.mood.State(),
		ToolHealth:    x.registry.Health(),
		MemoryStats:   x.memory.Stats(),
		TotalTurns:    x.totalTurns,
		ErrorCount:    x.errorCount,
	}
}

// Flush persists memory to the repository
func (x *Agent) Flush(ctx context.Context) error {
	return x.memory.Flush(ctx)
}

func (x *Agent) currentUserID() string {
	if x.session != nil {
		return x.session.UserID
	}
	return "default_user"
}

func usedTools(outcomes []tool.Outcome) []string {
	var used []string
	for _, o := range outcomes {
		if o.Success {
			used = append(used, o.Tool)
		}
	}
	return used
}
