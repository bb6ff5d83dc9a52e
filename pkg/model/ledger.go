package model

import (
	"strings"
	"time"
)

const (
	maxMemorableSummaries   = 50
	maxEmotionalExperiences = 100
)

// EmotionalExperience is one remembered emotional moment
type EmotionalExperience struct {
	Emotion   string    `json:"emotion"`
	Context   string    `json:"context"`
	Timestamp time.Time `json:"timestamp"`
}

// ExperienceLedger is the agent's own accumulated memory, shared across
// all users. Append-only with bounded trimming; single-writer (the
// memory store).
type ExperienceLedger struct {
	MemorableSummaries   []string              `json:"memorable_summaries"`
	TopicAssociations    map[string][]string   `json:"topic_associations"`
	EmotionalExperiences []EmotionalExperience `json:"emotional_experiences"`
}

// NewExperienceLedger creates an empty ledger
func NewExperienceLedger() *ExperienceLedger {
	return &ExperienceLedger{
		TopicAssociations: map[string][]string{},
	}
}

// AddMemorableMoment records a summary, cross-links the topics it covered
// and appends an emotional experience. Oldest entries drop past the caps.
func (x *ExperienceLedger) AddMemorableMoment(summary string, topics []string, emotion string, now time.Time) {
	x.MemorableSummaries = append(x.MemorableSummaries, summary)
	if len(x.MemorableSummaries) > maxMemorableSummaries {
		x.MemorableSummaries = x.MemorableSummaries[len(x.MemorableSummaries)-maxMemorableSummaries:]
	}

	for _, topic := range topics {
		for _, other := range topics {
			if other == topic {
				continue
			}
			if !contains(x.TopicAssociations[topic], other) {
				x.TopicAssociations[topic] = append(x.TopicAssociations[topic], other)
			}
		}
	}

	x.EmotionalExperiences = append(x.EmotionalExperiences, EmotionalExperience{
		Emotion:   emotion,
		Context:   summary,
		Timestamp: now,
	})
	if len(x.EmotionalExperiences) > maxEmotionalExperiences {
		x.EmotionalExperiences = x.EmotionalExperiences[len(x.EmotionalExperiences)-maxEmotionalExperiences:]
	}
}

// RelatedTopics returns topics linked to the given one by past turns
func (x *ExperienceLedger) RelatedTopics(topic string) []string {
	return x.TopicAssociations[strings.ToLower(topic)]
}

// EmotionFor returns the emotion of the first past experience whose
// context mentions the topic, or empty if none does
func (x *ExperienceLedger) EmotionFor(topic string) string {
	lower := strings.ToLower(topic)
	for _, exp := range x.EmotionalExperiences {
		if strings.Contains(strings.ToLower(exp.Context), lower) {
			return exp.Emotion
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
