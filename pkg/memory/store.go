package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/repository"
	"github.com/m-mizutani/rosetta/pkg/utils/logging"
)

// Config controls memory retention
type Config struct {
	MaxShortTerm       int
	MaxLongTerm        int
	MemorableThreshold int
}

func DefaultConfig() Config {
	return Config{
		MaxShortTerm:       20,
		MaxLongTerm:        100,
		MemorableThreshold: 2,
	}
}

func (x Config) Validate() error {
	if x.MaxShortTerm < 1 {
		return goerr.New("max short term must be at least 1",
			goerr.V("value", x.MaxShortTerm))
	}
	if x.MaxLongTerm < 1 {
		return goerr.New("max long term must be at least 1",
			goerr.V("value", x.MaxLongTerm))
	}
	return nil
}

// Context is the memory snapshot handed to reasoning and synthesis
type Context struct {
	Recent        []*model.Turn
	Topics        []string
	Profile       *model.UserProfile
	Memorable     []string
	RelatedTopics []string
}

// Store keeps conversation memory across three horizons: a bounded
// short-term window of turns, long-term conversation summaries, and the
// experience ledger with per-user profiles. All methods are safe for
// concurrent use. Persistence through the repository is best effort;
// a failing disk never breaks the conversation.
type Store struct {
	mu   sync.Mutex
	cfg  Config
	repo repository.Repository

	shortTerm     []*model.Turn
	longTerm      []string
	currentTopics []string

	profiles map[string]*model.UserProfile
	ledger   *model.ExperienceLedger

	currentUserID     string
	conversationStart time.Time

	now func() time.Time
}

type Option func(*Store)

// WithClock replaces the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(repo repository.Repository, cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		cfg:      cfg,
		repo:     repo,
		profiles: make(map[string]*model.UserProfile),
		ledger:   model.NewExperienceLedger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conversationStart = s.now()
	return s, nil
}

// Load restores profiles and the ledger from the latest snapshot
func (s *Store) Load(ctx context.Context) error {
	snapshot, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load memory snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Profiles != nil {
		s.profiles = snapshot.Profiles
	}
	if snapshot.Ledger != nil {
		s.ledger = snapshot.Ledger
	}
	return nil
}

// Flush persists profiles and the ledger
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	snapshot := &repository.Snapshot{
		Profiles: make(map[string]*model.UserProfile, len(s.profiles)),
		Ledger:   s.ledger,
		SavedAt:  s.now(),
	}
	for id, p := range s.profiles {
		snapshot.Profiles[id] = p.Clone()
	}
	s.mu.Unlock()

	if err := s.repo.SaveSnapshot(ctx, snapshot); err != nil {
		return goerr.Wrap(err, "failed to save memory snapshot")
	}
	return nil
}

// StartSession binds the store to a user, creating a profile on first
// contact
func (s *Store) StartSession(userID string) *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentUserID = userID
	now := s.now()

	profile, ok := s.profiles[userID]
	if !ok {
		profile = model.NewUserProfile(userID, now)
		s.profiles[userID] = profile
	} else {
		profile.LastSeen = now
	}
	return profile.Clone()
}

// Record adds a completed turn to memory. It updates topics and the
// user profile, promotes memorable turns into the ledger, archives the
// short-term window when it fills, and appends the turn to the
// repository log.
func (s *Store) Record(ctx context.Context, turn *model.Turn) {
	s.mu.Lock()

	s.shortTerm = append(s.shortTerm, turn)
	if len(s.shortTerm) > s.cfg.MaxShortTerm {
		s.shortTerm = s.shortTerm[len(s.shortTerm)-s.cfg.MaxShortTerm:]
	}

	for _, topic := range turn.Topics {
		if !contains(s.currentTopics, topic) {
			s.currentTopics = append(s.currentTopics, topic)
		}
	}
	if len(s.currentTopics) > 10 {
		s.currentTopics = s.currentTopics[len(s.currentTopics)-10:]
	}

	if profile, ok := s.profiles[s.currentUserID]; ok {
		profile.RecordTopics(turn.Topics)
		profile.TotalTurns++
		profile.LastSeen = s.now()
	}

	if s.memorableScore(turn) >= s.cfg.MemorableThreshold {
		emotion := turn.EmotionalTag
		if emotion == "" {
			emotion = "neutral"
		}
		s.ledger.AddMemorableMoment(
			fmt.Sprintf("Discussed %s with user", strings.Join(turn.Topics, ", ")),
			turn.Topics, emotion, s.now())
	}

	// Archive before the window overflows so older turns survive as a
	// summary rather than vanishing
	if len(s.shortTerm) >= int(float64(s.cfg.MaxShortTerm)*0.8) {
		s.archiveLocked()
	}

	s.mu.Unlock()

	if err := s.repo.AppendTurn(ctx, turn); err != nil {
		logging.From(ctx).Warn("failed to persist turn", "error", err,
			"turn_id", turn.ID)
	}
}

// caller holds s.mu
func (s *Store) archiveLocked() {
	if len(s.shortTerm) == 0 {
		return
	}

	s.longTerm = append(s.longTerm, s.summaryLocked())
	if len(s.longTerm) > s.cfg.MaxLongTerm {
		s.longTerm = s.longTerm[len(s.longTerm)-s.cfg.MaxLongTerm:]
	}

	s.shortTerm = nil
	s.currentTopics = nil
	s.conversationStart = s.now()
}

// caller holds s.mu
func (s *Store) summaryLocked() string {
	topics := make(map[string]struct{})
	tools := make(map[string]struct{})
	for _, turn := range s.shortTerm {
		for _, t := range turn.Topics {
			topics[t] = struct{}{}
		}
		for _, t := range turn.ToolsUsed {
			tools[t] = struct{}{}
		}
	}

	minutes := int(s.now().Sub(s.conversationStart).Minutes())
	return fmt.Sprintf("Conversation lasted %d minutes. Discussed: %s. Tools used: %s.",
		minutes, joinSorted(topics, 5), joinSorted(tools, 0))
}

func (s *Store) memorableScore(turn *model.Turn) int {
	score := 0
	if len(turn.ToolsUsed) > 1 {
		score++
	}
	if len(turn.Topics) > 2 {
		score++
	}
	if len(turn.AgentReply) > 500 {
		score++
	}
	if turn.EmotionalTag != "" && turn.EmotionalTag != "neutral" {
		score++
	}
	inputLower := strings.ToLower(turn.UserInput)
	for _, kw := range []string{"egypt", "ptolemy", "hieroglyph", "ancient", "pharaoh"} {
		if strings.Contains(inputLower, kw) {
			score++
			break
		}
	}
	return score
}

// Context assembles the memory snapshot for the next response: the most
// recent turns, active topics, the user profile, and ledger excerpts
// tied to the last few topics
func (s *Store) Context() *Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc := &Context{
		Topics: append([]string(nil), s.currentTopics...),
	}

	recent := s.shortTerm
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	mc.Recent = append([]*model.Turn(nil), recent...)

	if profile, ok := s.profiles[s.currentUserID]; ok {
		mc.Profile = profile.Clone()
	}

	topics := s.currentTopics
	if len(topics) > 3 {
		topics = topics[len(topics)-3:]
	}
	for _, topic := range topics {
		topicLower := strings.ToLower(topic)
		found := 0
		for _, mem := range s.ledger.MemorableSummaries {
			if strings.Contains(strings.ToLower(mem), topicLower) {
				mc.Memorable = append(mc.Memorable, mem)
				if found++; found >= 2 {
					break
				}
			}
		}

		related := s.ledger.RelatedTopics(topic)
		if len(related) > 3 {
			related = related[:3]
		}
		mc.RelatedTopics = append(mc.RelatedTopics, related...)
	}

	return mc
}

// SetInteractionStyle updates the preferred style of the current user
func (s *Store) SetInteractionStyle(style string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[s.currentUserID]
	if !ok {
		return false
	}
	profile.InteractionStyle = style
	return true
}

// InteractionStyle reports the current user's preferred style
func (s *Store) InteractionStyle() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile, ok := s.profiles[s.currentUserID]; ok {
		return profile.InteractionStyle
	}
	return ""
}

// EmotionFor reports the emotion the ledger associates with a topic
func (s *Store) EmotionFor(topic string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.EmotionFor(topic)
}

// LongTermSummaries returns archived conversation summaries
func (s *Store) LongTermSummaries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.longTerm...)
}

func (s *Store) Stats() model.MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.MemoryStats{
		ShortTermTurns:     len(s.shortTerm),
		LongTermSummaries:  len(s.longTerm),
		UserProfiles:       len(s.profiles),
		MemorableSummaries: len(s.ledger.MemorableSummaries),
		TopicAssociations:  len(s.ledger.TopicAssociations),
		CurrentTopics:      len(s.currentTopics),
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func joinSorted(set map[string]struct{}, limit int) string {
	if len(set) == 0 {
		return "none"
	}
	items := make([]string, 0, len(set))
	for k := range set {
		items = append(items, k)
	}
	sort.Strings(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return strings.Join(items, ", ")
}
