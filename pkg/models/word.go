package models

// Difficulty is the tier a word belongs to. Tiers unlock in order.
type Difficulty string

const (
	DifficultyBeginner Difficulty = "beginner"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
)

// Tiers lists all difficulty tiers in unlock order.
var Tiers = []Difficulty{DifficultyBeginner, DifficultyMedium, DifficultyHard}

// Rank returns the position of the tier in the unlock order, starting at 0.
// Unknown values rank below beginner so corrupted rows never unlock anything.
func (d Difficulty) Rank() int {
	for i, t := range Tiers {
		if t == d {
			return i
		}
	}
	return -1
}

// VocabularyItem represents a single word in the catalog
type VocabularyItem struct {
	ID          int            `json:"id" db:"id"`
	English     string         `json:"english" db:"english"`
	Translation string         `json:"translation" db:"translation"`
	Phonetic    string         `json:"phonetic" db:"phonetic"`
	Category    string         `json:"category" db:"category"`
	Difficulty  Difficulty     `json:"difficulty" db:"difficulty"`
	Sentences   []SentenceItem `json:"sentences" db:"-"`
}

// SentenceItem is an example sentence belonging to a word. IDs are unique
// across all sentences, not just within the parent word.
type SentenceItem struct {
	ID          int    `json:"id" db:"id"`
	WordID      int    `json:"word_id" db:"word_id"`
	Text        string `json:"text" db:"text"`
	Translation string `json:"translation" db:"translation"`
}
