package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/model"
)

const snapshotFile = "snapshot.json"

// Local is a flat-file repository: newline-delimited JSON turn records in
// one file per day, plus a single snapshot file for profiles and the
// ledger.
type Local struct {
	dir string
}

// NewLocal creates a file repository rooted at dir, creating it if needed
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, goerr.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}
	return &Local{dir: dir}, nil
}

func (x *Local) logPath(ts time.Time) string {
	return filepath.Join(x.dir, "turns_"+ts.Format("20060102")+".jsonl")
}

func (x *Local) AppendTurn(ctx context.Context, turn *model.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal turn", goerr.V("turn_id", turn.ID))
	}

	f, err := os.OpenFile(x.logPath(turn.Timestamp), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "failed to open turn log")
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return goerr.Wrap(err, "failed to append turn")
	}
	return nil
}

func (x *Local) ListTurns(ctx context.Context, since time.Time) ([]*model.Turn, error) {
	paths, err := filepath.Glob(filepath.Join(x.dir, "turns_*.jsonl"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list turn logs")
	}
	sort.Strings(paths)

	var turns []*model.Turn
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open turn log", goerr.V("path", path))
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var turn model.Turn
			if err := json.Unmarshal(scanner.Bytes(), &turn); err != nil {
				// A torn write at the tail must not make history unreadable
				continue
			}
			if !turn.Timestamp.Before(since) {
				turns = append(turns, &turn)
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return nil, goerr.Wrap(err, "failed to read turn log", goerr.V("path", path))
		}
		f.Close()
	}

	sort.Slice(turns, func(i, j int) bool {
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})
	return turns, nil
}

func (x *Local) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	snapshot.SavedAt = time.Now()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal snapshot")
	}

	// Write-then-rename so a crash never leaves a half-written snapshot
	tmp := filepath.Join(x.dir, snapshotFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write snapshot")
	}
	if err := os.Rename(tmp, filepath.Join(x.dir, snapshotFile)); err != nil {
		return goerr.Wrap(err, "failed to replace snapshot")
	}
	return nil
}

func (x *Local) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(x.dir, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(), nil
		}
		return nil, goerr.Wrap(err, "failed to read snapshot")
	}

	snapshot := NewSnapshot()
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal snapshot")
	}
	if snapshot.Profiles == nil {
		snapshot.Profiles = map[string]*model.UserProfile{}
	}
	if snapshot.Ledger == nil {
		snapshot.Ledger = model.NewExperienceLedger()
	}
	if snapshot.Ledger.TopicAssociations == nil {
		snapshot.Ledger.TopicAssociations = map[string][]string{}
	}
	return snapshot, nil
}
