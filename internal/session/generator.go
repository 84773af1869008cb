package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/example/vocatrain/internal/catalog"
	"github.com/example/vocatrain/internal/progress"
	"github.com/example/vocatrain/internal/unlock"
	"github.com/example/vocatrain/pkg/models"
)

const (
	// FlashcardCap bounds one flashcard session
	FlashcardCap = 20
	// SentenceCap bounds one sentence session
	SentenceCap = 5
	// MinSentenceWords is the number of learned words required before
	// sentence sessions are offered
	MinSentenceWords = 5

	learnedShare = 0.10
	reviewShare  = 0.30
)

// ErrNoAvailableWords means the unlocked pool is empty, usually because the
// catalog failed to load.
var ErrNoAvailableWords = errors.New("no words available for study")

// ErrNeedMoreWords means the learner has not learned enough words yet for
// the requested activity.
var ErrNeedMoreWords = errors.New("not enough learned words")

// Session is one bounded, shuffled study queue for a single activity
type Session struct {
	Type         models.SessionType
	Items        []models.SessionItem
	CurrentIndex int
	Results      []string
	PoolLength   int
	CreatedAt    time.Time
}

// Current returns the item under the cursor
func (s *Session) Current() models.SessionItem {
	return s.Items[s.CurrentIndex]
}

// Exhausted reports whether the cursor has consumed the whole queue
func (s *Session) Exhausted() bool {
	return s.CurrentIndex >= len(s.Items)-1
}

// Generator builds study queues out of the catalog and the learner's
// progress. It holds a read-only view of progress; outcome reporting goes
// back through the store, never through the generator.
type Generator struct {
	cat   *catalog.Catalog
	store *progress.Store
	snaps *Snapshots
	rnd   *rand.Rand
}

// NewGenerator creates a generator with a time-seeded random source
func NewGenerator(cat *catalog.Catalog, store *progress.Store, snaps *Snapshots) *Generator {
	return &Generator{
		cat:   cat,
		store: store,
		snaps: snaps,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FlashcardSession resumes the saved flashcard queue when its pool
// fingerprint still matches, otherwise generates a fresh one.
func (g *Generator) FlashcardSession() (*Session, error) {
	state := g.store.Snapshot()
	pool := unlock.AvailableWords(state, g.cat)
	if len(pool) == 0 {
		return nil, ErrNoAvailableWords
	}

	if snap, ok := g.snaps.Load(models.SessionFlashcards, len(pool)); ok {
		if g.itemsResolve(snap.Items, func(id int) bool { _, ok := g.cat.WordByID(id); return ok }) {
			return restore(models.SessionFlashcards, snap), nil
		}
		// Corrupted snapshot referencing unknown words: discard, regenerate
		g.snaps.Clear(models.SessionFlashcards)
	}

	var newIDs, reviewIDs, learnedIDs []int
	for _, w := range pool {
		switch {
		case containsID(state.LearnedWords, w.ID):
			learnedIDs = append(learnedIDs, w.ID)
		case containsID(state.ReviewWords, w.ID):
			reviewIDs = append(reviewIDs, w.ID)
		default:
			newIDs = append(newIDs, w.ID)
		}
	}

	sess := &Session{
		Type:       models.SessionFlashcards,
		Items:      g.compose(newIDs, reviewIDs, learnedIDs, FlashcardCap),
		PoolLength: len(pool),
		CreatedAt:  time.Now(),
	}
	g.persist(sess)
	return sess, nil
}

// SentenceSession builds a queue over the sentences of learned words. It
// requires a minimum number of learned words before offering anything.
func (g *Generator) SentenceSession() (*Session, error) {
	state := g.store.Snapshot()
	if len(state.LearnedWords) < MinSentenceWords {
		return nil, ErrNeedMoreWords
	}
	pool := g.cat.SentencesForWords(state.LearnedWords)
	if len(pool) == 0 {
		return nil, ErrNoAvailableWords
	}

	if snap, ok := g.snaps.Load(models.SessionSentences, len(pool)); ok {
		if g.itemsResolve(snap.Items, func(id int) bool { _, ok := g.cat.SentenceByID(id); return ok }) {
			return restore(models.SessionSentences, snap), nil
		}
		g.snaps.Clear(models.SessionSentences)
	}

	var newIDs, reviewIDs, learnedIDs []int
	for _, s := range pool {
		switch {
		case containsID(state.LearnedSentences, s.ID):
			learnedIDs = append(learnedIDs, s.ID)
		case containsID(state.ReviewSentences, s.ID):
			reviewIDs = append(reviewIDs, s.ID)
		default:
			newIDs = append(newIDs, s.ID)
		}
	}

	sess := &Session{
		Type:       models.SessionSentences,
		Items:      g.compose(newIDs, reviewIDs, learnedIDs, SentenceCap),
		PoolLength: len(pool),
		CreatedAt:  time.Now(),
	}
	g.persist(sess)
	return sess, nil
}

// RecordResult stores the outcome for the current item and saves the
// snapshot so a reload resumes in place.
func (g *Generator) RecordResult(sess *Session, outcome string) {
	sess.Results = append(sess.Results, outcome)
	g.persist(sess)
}

// Advance moves the cursor. Flashcard queues cycle forever; sentence queues
// regenerate from scratch once exhausted. The returned session is the one
// the caller should keep using.
func (g *Generator) Advance(sess *Session) (*Session, error) {
	if sess.Type == models.SessionFlashcards {
		sess.CurrentIndex = (sess.CurrentIndex + 1) % len(sess.Items)
		g.persist(sess)
		return sess, nil
	}
	if sess.Exhausted() {
		g.snaps.Clear(sess.Type)
		switch sess.Type {
		case models.SessionSentences:
			return g.SentenceSession()
		default:
			return nil, errors.New("cannot advance session type " + string(sess.Type))
		}
	}
	sess.CurrentIndex++
	g.persist(sess)
	return sess, nil
}

// Invalidate throws away the saved queue for one activity
func (g *Generator) Invalidate(t models.SessionType) {
	g.snaps.Clear(t)
}

// compose draws from the three classes toward a 10% learned / 30% review
// mix, backfills the remainder with new items, and shuffles the result.
// When the new pool cannot absorb the remainder, the spare capacity falls
// back to review first and then learned, keeping the session full whenever
// the combined pool allows it.
func (g *Generator) compose(newIDs, reviewIDs, learnedIDs []int, cap int) []models.SessionItem {
	size := len(newIDs) + len(reviewIDs) + len(learnedIDs)
	if size > cap {
		size = cap
	}
	if size == 0 {
		return nil
	}

	learnedCount := minInt(int(float64(size)*learnedShare), len(learnedIDs))
	reviewCount := minInt(int(float64(size)*reviewShare), len(reviewIDs))
	newCount := size - reviewCount - learnedCount
	if newCount > len(newIDs) {
		spill := newCount - len(newIDs)
		newCount = len(newIDs)
		extra := minInt(spill, len(reviewIDs)-reviewCount)
		reviewCount += extra
		spill -= extra
		learnedCount += minInt(spill, len(learnedIDs)-learnedCount)
	}

	items := make([]models.SessionItem, 0, newCount+reviewCount+learnedCount)
	items = append(items, g.sample(newIDs, newCount, models.ItemNew)...)
	items = append(items, g.sample(reviewIDs, reviewCount, models.ItemReview)...)
	items = append(items, g.sample(learnedIDs, learnedCount, models.ItemLearned)...)

	g.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items
}

// sample picks count ids without replacement and tags them with kind
func (g *Generator) sample(ids []int, count int, kind models.ItemKind) []models.SessionItem {
	picked := append([]int(nil), ids...)
	g.rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if count > len(picked) {
		count = len(picked)
	}
	items := make([]models.SessionItem, 0, count)
	for _, id := range picked[:count] {
		items = append(items, models.SessionItem{ItemID: id, Kind: kind})
	}
	return items
}

func (g *Generator) persist(sess *Session) {
	g.snaps.Save(sess.Type, models.SessionSnapshot{
		Items:        sess.Items,
		CurrentIndex: sess.CurrentIndex,
		Results:      sess.Results,
		PoolLength:   sess.PoolLength,
		CreatedAt:    sess.CreatedAt,
	})
}

func restore(t models.SessionType, snap *models.SessionSnapshot) *Session {
	return &Session{
		Type:         t,
		Items:        snap.Items,
		CurrentIndex: snap.CurrentIndex,
		Results:      snap.Results,
		PoolLength:   snap.PoolLength,
		CreatedAt:    snap.CreatedAt,
	}
}

// itemsResolve checks every queued id against the catalog
func (g *Generator) itemsResolve(items []models.SessionItem, resolve func(int) bool) bool {
	for _, item := range items {
		if !resolve(item.ItemID) {
			return false
		}
	}
	return true
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
