// Package trainer is the facade the presentation layer talks to. It owns
// the active study sessions and translates user gestures into progress
// mutations; rendering stays entirely on the caller's side.
package trainer

import (
	"context"
	"fmt"

	"github.com/example/vocatrain/internal/catalog"
	"github.com/example/vocatrain/internal/progress"
	"github.com/example/vocatrain/internal/session"
	"github.com/example/vocatrain/internal/unlock"
	"github.com/example/vocatrain/internal/update"
	"github.com/example/vocatrain/pkg/models"
)

// Card is the flashcard view handed to the presentation layer
type Card struct {
	Word *models.VocabularyItem
	Kind models.ItemKind
}

// SentenceCard is the sentence-session view
type SentenceCard struct {
	Sentence *models.SentenceItem
	Kind     models.ItemKind
}

// Trainer wires the store, the generator and the update coordinator behind
// the narrow contract the UI consumes.
type Trainer struct {
	cat   *catalog.Catalog
	store *progress.Store
	gen   *session.Generator
	snaps *session.Snapshots
	coord *update.Coordinator

	flashcards *session.Session
	sentences  *session.Session
	quiz       *session.Quiz
}

// New creates a trainer over already-wired components
func New(cat *catalog.Catalog, store *progress.Store, gen *session.Generator, snaps *session.Snapshots, coord *update.Coordinator) *Trainer {
	return &Trainer{
		cat:   cat,
		store: store,
		gen:   gen,
		snaps: snaps,
		coord: coord,
	}
}

// GetCurrentCard returns the flashcard under the cursor, generating or
// resuming the session on first use.
func (t *Trainer) GetCurrentCard() (*Card, error) {
	if t.flashcards == nil {
		sess, err := t.gen.FlashcardSession()
		if err != nil {
			return nil, err
		}
		t.flashcards = sess
	}
	item := t.flashcards.Current()
	word, ok := t.cat.WordByID(item.ItemID)
	if !ok {
		// The queue references a word the catalog no longer has; throw the
		// session away and start over.
		t.gen.Invalidate(models.SessionFlashcards)
		t.flashcards = nil
		return nil, fmt.Errorf("card %d not found in catalog", item.ItemID)
	}
	return &Card{Word: word, Kind: item.Kind}, nil
}

// Advance moves to the next flashcard. The queue cycles, so advancing past
// the end wraps back to the start.
func (t *Trainer) Advance() error {
	if t.flashcards == nil {
		if _, err := t.GetCurrentCard(); err != nil {
			return err
		}
	}
	sess, err := t.gen.Advance(t.flashcards)
	if err != nil {
		return err
	}
	t.flashcards = sess
	return nil
}

// MarkLearned handles the swipe-right gesture on the current flashcard
func (t *Trainer) MarkLearned(id int) error {
	t.store.MarkWordLearned(id)
	if t.flashcards != nil {
		t.gen.RecordResult(t.flashcards, string(models.ItemLearned))
	}
	return t.Advance()
}

// MarkReview handles the swipe-left gesture on the current flashcard
func (t *Trainer) MarkReview(id int) error {
	t.store.MarkWordReview(id)
	if t.flashcards != nil {
		t.gen.RecordResult(t.flashcards, string(models.ItemReview))
	}
	return t.Advance()
}

// GetCurrentSentence returns the sentence under the cursor of the sentence
// session, generating or resuming it on first use.
func (t *Trainer) GetCurrentSentence() (*SentenceCard, error) {
	if t.sentences == nil {
		sess, err := t.gen.SentenceSession()
		if err != nil {
			return nil, err
		}
		t.sentences = sess
	}
	item := t.sentences.Current()
	sentence, ok := t.cat.SentenceByID(item.ItemID)
	if !ok {
		t.gen.Invalidate(models.SessionSentences)
		t.sentences = nil
		return nil, fmt.Errorf("sentence %d not found in catalog", item.ItemID)
	}
	return &SentenceCard{Sentence: sentence, Kind: item.Kind}, nil
}

// MarkSentenceLearned records a got-it on the current sentence and advances
func (t *Trainer) MarkSentenceLearned(id int) error {
	t.store.MarkSentenceLearned(id)
	return t.advanceSentences(string(models.ItemLearned))
}

// MarkSentenceReview records a needs-work on the current sentence and advances
func (t *Trainer) MarkSentenceReview(id int) error {
	t.store.MarkSentenceReview(id)
	return t.advanceSentences(string(models.ItemReview))
}

func (t *Trainer) advanceSentences(outcome string) error {
	if t.sentences == nil {
		return nil
	}
	t.gen.RecordResult(t.sentences, outcome)
	sess, err := t.gen.Advance(t.sentences)
	if err != nil {
		t.sentences = nil
		return err
	}
	t.sentences = sess
	return nil
}

// GetQuizQuestion returns the current question and its position,
// generating or resuming the quiz on first use.
func (t *Trainer) GetQuizQuestion() (*models.QuizQuestion, int, error) {
	if t.quiz == nil || t.quiz.Finished() {
		quiz, err := t.gen.QuizSession()
		if err != nil {
			return nil, 0, err
		}
		t.quiz = quiz
	}
	question := t.quiz.Current()
	return &question, t.quiz.CurrentIndex, nil
}

// AnswerQuiz grades the learner's choice. finished is true once the last
// question has been answered and the score recorded.
func (t *Trainer) AnswerQuiz(choice int) (correct, finished bool, err error) {
	if t.quiz == nil || t.quiz.Finished() {
		return false, false, fmt.Errorf("no quiz in progress")
	}
	correct = t.gen.Answer(t.quiz, choice)
	finished = t.quiz.Finished()
	return correct, finished, nil
}

// QuizScore returns the running score of the active quiz
func (t *Trainer) QuizScore() (score, total int) {
	if t.quiz == nil {
		return 0, 0
	}
	return t.quiz.Score, len(t.quiz.Questions)
}

// Word resolves a catalog word id for the presentation layer
func (t *Trainer) Word(id int) (*models.VocabularyItem, bool) {
	return t.cat.WordByID(id)
}

// GetProgressSummary returns the aggregate progress counts
func (t *Trainer) GetProgressSummary() models.ProgressSummary {
	return t.store.Summary()
}

// GetTierInfo returns the difficulty unlock picture
func (t *Trainer) GetTierInfo() unlock.TierInfo {
	return unlock.Evaluate(t.store.Snapshot(), t.cat)
}

// ResetProgress wipes all progress and throws away every session,
// in-memory and persisted.
func (t *Trainer) ResetProgress() {
	t.store.Reset()
	t.snaps.ClearAll()
	t.flashcards = nil
	t.sentences = nil
	t.quiz = nil
}

// CheckForUpdate runs a user-triggered staged-version check
func (t *Trainer) CheckForUpdate(ctx context.Context) (update.Status, error) {
	return t.coord.Check(ctx)
}

// InstallUpdate installs the pending version. The coordinator clears the
// session snapshots, so the in-memory sessions are dropped with them.
func (t *Trainer) InstallUpdate(ctx context.Context) (update.Status, error) {
	status, err := t.coord.Install(ctx)
	if err == nil {
		t.flashcards = nil
		t.sentences = nil
		t.quiz = nil
	}
	return status, err
}

// GetUpdateStatus returns the coordinator's user-visible state
func (t *Trainer) GetUpdateStatus() update.Status {
	return t.coord.Status()
}

// Subscribe registers a listener fired after every committed progress
// mutation. The returned function removes the subscription.
func (t *Trainer) Subscribe(fn func()) func() {
	return t.store.Subscribe(fn)
}
