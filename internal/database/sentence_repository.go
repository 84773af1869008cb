package database

import (
	"fmt"
	"strings"

	"github.com/example/vocatrain/pkg/models"
)

// SentenceRepository handles database operations for example sentences
type SentenceRepository struct{}

// NewSentenceRepository creates a new repository instance
func NewSentenceRepository() *SentenceRepository {
	return &SentenceRepository{}
}

// GetAll returns every sentence ordered by id
func (r *SentenceRepository) GetAll() ([]models.SentenceItem, error) {
	var sentences []models.SentenceItem
	err := DB.Select(&sentences, "SELECT * FROM sentences ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get sentences: %v", err)
	}
	return sentences, nil
}

// GetByWord returns the sentences belonging to one word
func (r *SentenceRepository) GetByWord(wordID int) ([]models.SentenceItem, error) {
	var sentences []models.SentenceItem
	query := "SELECT * FROM sentences WHERE word_id = ? ORDER BY id"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", -1)
	}
	err := DB.Select(&sentences, query, wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sentences by word: %v", err)
	}
	return sentences, nil
}

// Upsert inserts a sentence or updates the existing row with the same id
func (r *SentenceRepository) Upsert(sentence *models.SentenceItem) error {
	query := `
		INSERT INTO sentences (id, word_id, text, translation)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			word_id = excluded.word_id,
			text = excluded.text,
			translation = excluded.translation
	`
	if DB.DriverName() == "postgres" {
		for i := 1; strings.Contains(query, "?"); i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	_, err := DB.Exec(query,
		sentence.ID,
		sentence.WordID,
		sentence.Text,
		sentence.Translation,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sentence: %v", err)
	}
	return nil
}

// DeleteByWord removes all sentences belonging to a word
func (r *SentenceRepository) DeleteByWord(wordID int) error {
	query := "DELETE FROM sentences WHERE word_id = ?"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", -1)
	}
	_, err := DB.Exec(query, wordID)
	if err != nil {
		return fmt.Errorf("failed to delete sentences: %v", err)
	}
	return nil
}
