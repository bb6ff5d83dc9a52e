package model

import (
	"github.com/google/uuid"
)

type TraceID string

// NewTraceID generates a new unique TraceID
func NewTraceID() TraceID {
	return TraceID(uuid.New().String())
}

// ReasoningType is the coarse strategy classification for a turn
type ReasoningType string

const (
	ReasoningDirectAnswer      ReasoningType = "direct_answer"
	ReasoningToolSearch        ReasoningType = "tool_search"
	ReasoningMultiStep         ReasoningType = "multi_step"
	ReasoningClarification     ReasoningType = "clarification"
	ReasoningEmotionalResponse ReasoningType = "emotional_response"
)

// ToolDecision describes how tools will be used for a turn
type ToolDecision string

const (
	NoTools         ToolDecision = "no_tools"
	SingleTool      ToolDecision = "single_tool"
	MultipleTools   ToolDecision = "multiple_tools"
	SequentialTools ToolDecision = "sequential_tools"
)

// Complexity is the estimated difficulty of answering a turn
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// ReasoningStep is one human-readable step of the reasoning trace.
// Steps exist for observability, not control flow.
type ReasoningStep struct {
	Number     int     `json:"number"`
	Thought    string  `json:"thought"`
	Decision   string  `json:"decision"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
	Tool       string  `json:"tool,omitempty"`
	Expected   string  `json:"expected,omitempty"`
}

// ReasoningResult is the complete analysis of one turn. Created fresh
// each turn by the reasoning engine; read-only afterward.
type ReasoningResult struct {
	ID                 TraceID           `json:"id"`
	ReasoningType      ReasoningType     `json:"reasoning_type"`
	ToolDecision       ToolDecision      `json:"tool_decision"`
	ToolsToUse         []string          `json:"tools_to_use,omitempty"`
	Steps              []ReasoningStep   `json:"steps"`
	Strategy           string            `json:"strategy"`
	Confidence         float64           `json:"confidence"`
	Complexity         Complexity        `json:"complexity"`
	EmotionalContext   string            `json:"emotional_context,omitempty"`
	PersonaAdjustments map[string]string `json:"persona_adjustments,omitempty"`
	IsFollowup         bool              `json:"is_followup,omitempty"`
	HasPersonalMemory  bool              `json:"has_personal_memory,omitempty"`
	KeyEntities        []string          `json:"key_entities,omitempty"`
}
