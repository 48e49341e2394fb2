// Package history is the append-only, capacity-bounded log of draft
// snapshots. Every successful generation lands here as an immutable Version
// that can be restored later; retention is capped at the 50 most recent
// entries, oldest evicted first.
package history

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LegatusConsultingLtd/robotalk/internal/draft"
)

// MaxVersions bounds retention. The newest entry is always index 0.
const MaxVersions = 50

// Version is one immutable checkpoint of the drafting state.
type Version struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	CreatedAt time.Time   `json:"createdAt"`
	Snapshot  draft.State `json:"snapshot"`
}

// Repository persists the ordered version list. The storage medium is
// swappable without touching Store logic; file and SQLite implementations
// live alongside this package.
type Repository interface {
	Load() ([]Version, error)
	Save(versions []Version) error
}

// Store keeps the in-memory version list in sync with its repository. It is
// safe for use from job goroutines; mutations are ordered by completion of
// the generation that triggered them.
type Store struct {
	mu       sync.Mutex
	repo     Repository
	versions []Version
	activeID string
}

// NewStore loads persisted history through repo. Corrupt or absent data is
// never fatal: the store simply starts empty.
func NewStore(repo Repository) *Store {
	store := &Store{repo: repo}
	if repo == nil {
		return store
	}
	versions, err := repo.Load()
	if err != nil {
		log.Printf("[history] load failed, starting empty: %v", err)
		return store
	}
	if len(versions) > MaxVersions {
		versions = versions[:MaxVersions]
	}
	store.versions = versions
	if len(versions) > 0 {
		store.activeID = versions[0].ID
	}
	return store
}

// Record checkpoints a snapshot: fresh id, current timestamp, prepended,
// truncated to MaxVersions, persisted, and marked active. It satisfies
// draft.Recorder.
func (s *Store) Record(kind string, snapshot draft.State) {
	version := Version{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now(),
		Snapshot:  snapshot,
	}

	s.mu.Lock()
	s.versions = append([]Version{version}, s.versions...)
	if len(s.versions) > MaxVersions {
		s.versions = s.versions[:MaxVersions]
	}
	s.activeID = version.ID
	snapshotList := append([]Version(nil), s.versions...)
	s.mu.Unlock()

	s.persist(snapshotList)
}

// Restore returns the snapshot for id and marks it active. A missing id is
// a silent no-op; the UI only ever offers ids it got from List. The version
// list itself is never mutated by a restore.
func (s *Store) Restore(id string) (draft.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, version := range s.versions {
		if version.ID == id {
			s.activeID = id
			return version.Snapshot, true
		}
	}
	return draft.State{}, false
}

// List returns the versions newest-first. The slice is a copy; callers
// cannot reach into the store through it.
func (s *Store) List() []Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Version(nil), s.versions...)
}

// ActiveID is the id of the most recently created or restored version, or
// empty when the store has no history.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Len reports the number of retained versions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.versions)
}

func (s *Store) persist(versions []Version) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(versions); err != nil {
		log.Printf("[history] save failed: %v", err)
	}
}
