package model

import (
	"time"

	"github.com/google/uuid"
)

type TurnID string

// NewTurnID generates a new unique TurnID
func NewTurnID() TurnID {
	return TurnID(uuid.New().String())
}

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Turn represents one completed exchange: user input plus agent reply.
// Immutable after creation; owned by the short-term buffer and appended
// to the per-day turn log.
type Turn struct {
	ID           TurnID    `json:"id"`
	UserID       string    `json:"user_id"`
	Timestamp    time.Time `json:"timestamp"`
	UserInput    string    `json:"user_input"`
	AgentReply   string    `json:"agent_reply"`
	ToolsUsed    []string  `json:"tools_used,omitempty"`
	EmotionalTag string    `json:"emotional_tag,omitempty"`
	Topics       []string  `json:"topics,omitempty"`
	TraceID      TraceID   `json:"trace_id,omitempty"`
}

// Response is the complete result of one turn, returned to presentation
// layers. Err is populated on total-turn failure; Reply is never empty.
type Response struct {
	Reply        string           `json:"reply"`
	Confidence   float64          `json:"confidence"`
	ToolsUsed    []string         `json:"tools_used,omitempty"`
	EmotionalTag string           `json:"emotional_tag,omitempty"`
	Topics       []string         `json:"topics,omitempty"`
	TimingMS     int64            `json:"timing_ms"`
	Trace        *ReasoningResult `json:"-"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	Err          error            `json:"-"`
}

// SessionInfo describes a started conversation session
type SessionInfo struct {
	SessionID SessionID `json:"session_id"`
	UserID    string    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	Tools     []string  `json:"tools"`
}
