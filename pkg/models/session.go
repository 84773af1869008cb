package models

import "time"

// SessionType identifies one of the three study activities
type SessionType string

const (
	SessionFlashcards SessionType = "flashcards"
	SessionSentences  SessionType = "sentences"
	SessionQuiz       SessionType = "quiz"
)

// SessionTypes lists every activity that keeps its own snapshot
var SessionTypes = []SessionType{SessionFlashcards, SessionSentences, SessionQuiz}

// ItemKind tags a queued item with the class it was drawn from
type ItemKind string

const (
	ItemNew     ItemKind = "new"
	ItemReview  ItemKind = "review"
	ItemLearned ItemKind = "learned"
)

// SessionItem is one entry of a study queue
type SessionItem struct {
	ItemID int      `json:"item_id"`
	Kind   ItemKind `json:"kind"`
}

// SessionSnapshot is the persisted mid-session position for one activity.
// PoolLength fingerprints the candidate pool the queue was generated from;
// a snapshot whose fingerprint no longer matches is discarded on load.
type SessionSnapshot struct {
	Items        []SessionItem `json:"items"`
	CurrentIndex int           `json:"current_index"`
	Results      []string      `json:"results"`
	PoolLength   int           `json:"pool_length"`
	CreatedAt    time.Time     `json:"created_at"`
}

// QuizQuestion is a single multiple-choice question. Options holds exactly
// four translations, one of which is the correct word's.
type QuizQuestion struct {
	WordID       int      `json:"word_id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// QuizSnapshot is the persisted mid-quiz position. Questions are stored in
// full because options and their order cannot be regenerated.
type QuizSnapshot struct {
	Questions    []QuizQuestion `json:"questions"`
	CurrentIndex int            `json:"current_index"`
	Score        int            `json:"score"`
	PoolLength   int            `json:"pool_length"`
	CreatedAt    time.Time      `json:"created_at"`
}
