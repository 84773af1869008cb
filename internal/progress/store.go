package progress

import (
	"log"
	"sync"
	"time"

	"github.com/example/vocatrain/pkg/models"
)

// progressKey is the document the whole state is stored under
const progressKey = "progress"

// timeNow is stubbed in tests to pin streak and usage bucket dates
var timeNow = time.Now

// Documents is the persistence surface the store writes through. The
// database package's DocumentStore satisfies it.
type Documents interface {
	Get(key string, out interface{}) (bool, error)
	Put(key string, value interface{}) error
	Delete(key string) error
}

// Store owns the learner's ProgressState. All mutation goes through its
// methods; every committed mutation is persisted synchronously and then
// announced to subscribers. Persistence failures are logged and the
// in-memory state stays authoritative for the lifetime of the process.
// The store is shared between the bot's update loop and the scheduler's
// job goroutines, so every method takes the mutex. Listeners fire after
// the lock is released and may call back into the store.
type Store struct {
	mu        sync.Mutex
	docs      Documents
	state     *models.ProgressState
	listeners map[int]func()
	nextID    int
}

// NewStore loads the persisted state (migrating older document shapes) and
// returns a store over it. A missing or unreadable document yields a fresh
// empty state.
func NewStore(docs Documents) *Store {
	s := &Store{
		docs:      docs,
		listeners: make(map[int]func()),
	}
	state, err := loadState(docs)
	if err != nil {
		log.Printf("progress: failed to load state, starting empty: %v", err)
		state = models.NewProgressState()
	}
	s.state = state
	return s
}

// Subscribe registers a listener fired synchronously after each committed
// mutation. The returned function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// MarkWordLearned moves a word into the learned set. Words already learned
// are left untouched; a word in the review set is removed from it first.
func (s *Store) MarkWordLearned(id int) {
	s.mu.Lock()
	if contains(s.state.LearnedWords, id) {
		s.mu.Unlock()
		return
	}
	s.state.LearnedWords = append(s.state.LearnedWords, id)
	s.state.ReviewWords = remove(s.state.ReviewWords, id)
	s.updateStreak()
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// MarkWordReview moves a word into the review set, removing it from the
// learned set if present.
func (s *Store) MarkWordReview(id int) {
	s.mu.Lock()
	if !contains(s.state.ReviewWords, id) {
		s.state.ReviewWords = append(s.state.ReviewWords, id)
	}
	s.state.LearnedWords = remove(s.state.LearnedWords, id)
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// MarkSentenceLearned mirrors MarkWordLearned for the sentence sets
func (s *Store) MarkSentenceLearned(id int) {
	s.mu.Lock()
	if contains(s.state.LearnedSentences, id) {
		s.mu.Unlock()
		return
	}
	s.state.LearnedSentences = append(s.state.LearnedSentences, id)
	s.state.ReviewSentences = remove(s.state.ReviewSentences, id)
	s.updateStreak()
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// MarkSentenceReview mirrors MarkWordReview for the sentence sets
func (s *Store) MarkSentenceReview(id int) {
	s.mu.Lock()
	if !contains(s.state.ReviewSentences, id) {
		s.state.ReviewSentences = append(s.state.ReviewSentences, id)
	}
	s.state.LearnedSentences = remove(s.state.LearnedSentences, id)
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// RecordUsageTick increments the visit counter for the current
// (date, weekday, hour) bucket. Called once per minute of active use.
func (s *Store) RecordUsageTick() {
	now := timeNow()
	day := now.Format("2006-01-02")
	bucket := now.Format("Mon") + "-" + now.Format("15")

	s.mu.Lock()
	if s.state.UsageTracking == nil {
		s.state.UsageTracking = make(map[string]map[string]int)
	}
	if s.state.UsageTracking[day] == nil {
		s.state.UsageTracking[day] = make(map[string]int)
	}
	s.state.UsageTracking[day][bucket]++
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// AddStudyTime adds whole minutes to the monotonic study-time counter
func (s *Store) AddStudyTime(minutes int) {
	if minutes <= 0 {
		return
	}
	s.mu.Lock()
	s.state.TotalStudyTime += minutes
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// RecordQuizResult stores the latest quiz score and bumps the quiz counter
func (s *Store) RecordQuizResult(score, total int) {
	percentage := 0
	if total > 0 {
		percentage = score * 100 / total
	}

	s.mu.Lock()
	s.state.LastQuizScore = &models.QuizScore{
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Date:       timeNow().Format("2006-01-02"),
	}
	s.state.QuizzesTaken++
	s.updateStreak()
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// Reset clears every set and counter back to an empty state
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = models.NewProgressState()
	fns := s.commit()
	s.mu.Unlock()
	notify(fns)
}

// Snapshot returns a copy of the current state. Callers get a read-only
// view; mutating the copy has no effect on the store.
func (s *Store) Snapshot() models.ProgressState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *s.state
	st.LearnedWords = append([]int(nil), s.state.LearnedWords...)
	st.ReviewWords = append([]int(nil), s.state.ReviewWords...)
	st.LearnedSentences = append([]int(nil), s.state.LearnedSentences...)
	st.ReviewSentences = append([]int(nil), s.state.ReviewSentences...)
	if s.state.LastQuizScore != nil {
		score := *s.state.LastQuizScore
		st.LastQuizScore = &score
	}
	tracking := make(map[string]map[string]int, len(s.state.UsageTracking))
	for day, buckets := range s.state.UsageTracking {
		cp := make(map[string]int, len(buckets))
		for k, v := range buckets {
			cp[k] = v
		}
		tracking[day] = cp
	}
	st.UsageTracking = tracking
	return st
}

// Summary returns the aggregate counts shown by the presentation layer
func (s *Store) Summary() models.ProgressSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := models.ProgressSummary{
		LearnedWords:     len(s.state.LearnedWords),
		ReviewWords:      len(s.state.ReviewWords),
		LearnedSentences: len(s.state.LearnedSentences),
		ReviewSentences:  len(s.state.ReviewSentences),
		StreakCount:      s.state.StreakCount,
		TotalStudyTime:   s.state.TotalStudyTime,
		QuizzesTaken:     s.state.QuizzesTaken,
	}
	if s.state.LastQuizScore != nil {
		score := *s.state.LastQuizScore
		summary.LastQuizScore = &score
	}
	return summary
}

// ReviewCount returns how many words currently wait in the review set
func (s *Store) ReviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.ReviewWords)
}

// updateStreak bumps the streak once per calendar day, keyed by the last
// study date. Fired by learning actions only, never by mere page views.
// Callers hold the mutex.
func (s *Store) updateStreak() {
	today := timeNow().Format("2006-01-02")
	if s.state.LastStudyDate == today {
		return
	}
	s.state.StreakCount++
	s.state.LastStudyDate = today
}

// commit persists the state and returns the listeners to notify. A failed
// write keeps the in-memory state authoritative; nothing propagates to the
// caller. Callers hold the mutex and fire the listeners after releasing it.
func (s *Store) commit() []func() {
	s.state.SchemaVersion = models.ProgressSchemaVersion
	if err := s.docs.Put(progressKey, s.state); err != nil {
		log.Printf("progress: failed to persist state: %v", err)
	}
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
