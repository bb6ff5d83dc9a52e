package model

// ToolHealth is the aggregate view of one registered tool adapter
type ToolHealth struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Calls        int     `json:"calls"`
	Failures     int     `json:"failures"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMS int64   `json:"avg_latency_ms"`
}

// MemoryStats summarizes memory store occupancy
type MemoryStats struct {
	ShortTermTurns     int `json:"short_term_turns"`
	LongTermSummaries  int `json:"long_term_summaries"`
	UserProfiles       int `json:"user_profiles"`
	MemorableSummaries int `json:"memorable_summaries"`
	TopicAssociations  int `json:"topic_associations"`
	CurrentTopics      int `json:"current_topics"`
}

// Status is the agent health snapshot exposed to presentation layers
type Status struct {
	ActiveSession string       `json:"active_session,omitempty"`
	Mood          MoodState    `json:"mood"`
	ToolHealth    []ToolHealth `json:"tool_health"`
	MemoryStats   MemoryStats  `json:"memory_stats"`
	TotalTurns    int          `json:"total_turns"`
	ErrorCount    int          `json:"error_count"`
}
