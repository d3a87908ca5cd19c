package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrSessionNotFound is returned when no persisted session exists for an
// audit ID.
var ErrSessionNotFound = errors.New("audit: session not found")

// ErrPersistence marks disk I/O failures while reading or writing a session
// file. Callers branch on it with errors.Is.
var ErrPersistence = errors.New("audit: persistence failure")

// ErrMalformedSession marks a session file that exists but does not
// deserialize into a valid state. Loading such a file fails loudly; the
// caller decides whether to discard or repair it.
var ErrMalformedSession = errors.New("audit: malformed session data")

// SessionStore persists audit session snapshots.
type SessionStore interface {
	Load(auditID string) (State, error)
	Save(State) error
}

// Repository stores one pretty-printed JSON file per session under the
// sessions directory, named by audit ID.
type Repository struct {
	dir string
}

// NewRepository creates a repository rooted at the sessions directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Path returns the on-disk location for a session.
func (r *Repository) Path(auditID string) string {
	return filepath.Join(r.dir, auditID+".json")
}

// Load reads the persisted session if present.
func (r *Repository) Load(auditID string) (State, error) {
	path := r.Path(auditID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, fmt.Errorf("%w: %s", ErrSessionNotFound, auditID)
		}
		return State{}, fmt.Errorf("%w: read %s: %w", ErrPersistence, path, err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("%w: parse %s: %w", ErrMalformedSession, path, err)
	}
	if err := state.validate(); err != nil {
		return State{}, fmt.Errorf("%w: %s: %w", ErrMalformedSession, path, err)
	}
	return state, nil
}

// List returns every readable session, most recently updated first. Files
// that fail to parse are skipped so one corrupt session cannot hide the
// rest; resuming a corrupt session still fails loudly through Load.
func (r *Repository) List() ([]State, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read sessions dir %s: %w", ErrPersistence, r.dir, err)
	}
	var states []State
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		auditID := strings.TrimSuffix(entry.Name(), ".json")
		state, err := r.Load(auditID)
		if err != nil {
			continue
		}
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].UpdatedAt.After(states[j].UpdatedAt)
	})
	return states, nil
}

// Save writes the full session to disk synchronously.
func (r *Repository) Save(state State) error {
	if err := state.validate(); err != nil {
		return fmt.Errorf("audit: refusing to persist invalid session: %w", err)
	}
	path := r.Path(state.AuditID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: ensure sessions dir: %w", ErrPersistence, err)
	}
	encoded, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode session %s: %w", ErrPersistence, state.AuditID, err)
	}
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, path, err)
	}
	return nil
}
