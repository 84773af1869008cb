package session

import (
	"log"

	"github.com/example/vocatrain/pkg/models"
)

// Documents is the persistence surface snapshots are written through
type Documents interface {
	Get(key string, out interface{}) (bool, error)
	Put(key string, value interface{}) error
	Delete(key string) error
}

// Snapshots persists the per-activity mid-session position. Saves are
// synchronous and failures only logged: a lost snapshot costs a resumed
// position, never progress.
type Snapshots struct {
	docs Documents
}

// NewSnapshots creates a snapshot store over the given documents
func NewSnapshots(docs Documents) *Snapshots {
	return &Snapshots{docs: docs}
}

func snapshotKey(t models.SessionType) string {
	return "session:" + string(t)
}

// Save writes the snapshot for one activity
func (s *Snapshots) Save(t models.SessionType, snap models.SessionSnapshot) {
	if err := s.docs.Put(snapshotKey(t), snap); err != nil {
		log.Printf("session: failed to save %s snapshot: %v", t, err)
	}
}

// Load returns the saved snapshot for one activity only when its pool
// fingerprint matches poolLength. A mismatch means progress changed since
// the queue was built; the stale snapshot is discarded like a cache miss.
func (s *Snapshots) Load(t models.SessionType, poolLength int) (*models.SessionSnapshot, bool) {
	var snap models.SessionSnapshot
	found, err := s.docs.Get(snapshotKey(t), &snap)
	if err != nil {
		log.Printf("session: failed to load %s snapshot: %v", t, err)
		s.Clear(t)
		return nil, false
	}
	if !found {
		return nil, false
	}
	if snap.PoolLength != poolLength || len(snap.Items) == 0 || snap.CurrentIndex >= len(snap.Items) {
		s.Clear(t)
		return nil, false
	}
	return &snap, true
}

// SaveQuiz writes the quiz snapshot
func (s *Snapshots) SaveQuiz(snap models.QuizSnapshot) {
	if err := s.docs.Put(snapshotKey(models.SessionQuiz), snap); err != nil {
		log.Printf("session: failed to save quiz snapshot: %v", err)
	}
}

// LoadQuiz returns the saved quiz snapshot when its pool fingerprint
// matches the current learned-word count.
func (s *Snapshots) LoadQuiz(poolLength int) (*models.QuizSnapshot, bool) {
	var snap models.QuizSnapshot
	found, err := s.docs.Get(snapshotKey(models.SessionQuiz), &snap)
	if err != nil {
		log.Printf("session: failed to load quiz snapshot: %v", err)
		s.Clear(models.SessionQuiz)
		return nil, false
	}
	if !found {
		return nil, false
	}
	if snap.PoolLength != poolLength || len(snap.Questions) == 0 || snap.CurrentIndex >= len(snap.Questions) {
		s.Clear(models.SessionQuiz)
		return nil, false
	}
	return &snap, true
}

// Clear removes the snapshot for one activity
func (s *Snapshots) Clear(t models.SessionType) {
	if err := s.docs.Delete(snapshotKey(t)); err != nil {
		log.Printf("session: failed to clear %s snapshot: %v", t, err)
	}
}

// ClearAll removes every activity snapshot. Used on progress reset and
// before installing a new content version.
func (s *Snapshots) ClearAll() {
	for _, t := range models.SessionTypes {
		s.Clear(t)
	}
}
