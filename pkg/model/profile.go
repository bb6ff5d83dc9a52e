package model

import (
	"sort"
	"time"
)

// UserProfile is the persistent per-user record. Created on first
// contact, updated after every turn that yields topics, never deleted.
type UserProfile struct {
	UserID           string         `json:"user_id"`
	FirstSeen        time.Time      `json:"first_seen"`
	LastSeen         time.Time      `json:"last_seen"`
	TotalTurns       int            `json:"total_turns"`
	InteractionStyle string         `json:"interaction_style"`
	PreferredLength  string         `json:"preferred_length"`
	TopicFrequency   map[string]int `json:"topic_frequency"`
	FavoriteTopics   []string       `json:"favorite_topics"`
}

// NewUserProfile creates a profile with default preferences
func NewUserProfile(userID string, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:           userID,
		FirstSeen:        now,
		LastSeen:         now,
		InteractionStyle: "curious",
		PreferredLength:  "standard",
		TopicFrequency:   map[string]int{},
	}
}

// RecordTopics bumps topic frequencies and recomputes FavoriteTopics as
// the top-5 by count. Ties break alphabetically so the ordering is stable
// across save/load cycles.
func (p *UserProfile) RecordTopics(topics []string) {
	for _, topic := range topics {
		p.TopicFrequency[topic]++
	}

	type entry struct {
		topic string
		count int
	}
	entries := make([]entry, 0, len(p.TopicFrequency))
	for topic, count := range p.TopicFrequency {
		entries = append(entries, entry{topic, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].topic < entries[j].topic
	})

	n := len(entries)
	if n > 5 {
		n = 5
	}
	p.FavoriteTopics = make([]string, 0, n)
	for _, e := range entries[:n] {
		p.FavoriteTopics = append(p.FavoriteTopics, e.topic)
	}
}

// Clone returns a deep copy safe to hand out in context snapshots
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.TopicFrequency = make(map[string]int, len(p.TopicFrequency))
	for k, v := range p.TopicFrequency {
		cp.TopicFrequency[k] = v
	}
	cp.FavoriteTopics = append([]string(nil), p.FavoriteTopics...)
	return &cp
}
