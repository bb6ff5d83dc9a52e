package repository

import (
	"context"
	"time"

	"github.com/m-mizutani/rosetta/pkg/model"
)

// Snapshot holds the state that must survive restarts: user profiles and
// the experience ledger. A saved-then-reloaded snapshot must be
// behaviorally identical.
type Snapshot struct {
	Profiles map[string]*model.UserProfile `json:"profiles"`
	Ledger   *model.ExperienceLedger       `json:"ledger"`
	SavedAt  time.Time                     `json:"saved_at"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Profiles: map[string]*model.UserProfile{},
		Ledger:   model.NewExperienceLedger(),
	}
}

// Repository defines durable storage for turns and memory state
type Repository interface {
	// AppendTurn appends one turn record to the per-day turn log
	AppendTurn(ctx context.Context, turn *model.Turn) error

	// ListTurns returns logged turns with timestamp >= since, oldest first
	ListTurns(ctx context.Context, since time.Time) ([]*model.Turn, error)

	// SaveSnapshot persists profiles and the ledger
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// LoadSnapshot restores the last saved snapshot; an empty snapshot is
	// returned when none has been saved yet
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}
