package database

import (
	"fmt"
	"strings"

	"github.com/example/vocatrain/pkg/models"
)

// WordRepository handles database operations for catalog words
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetAll returns all words ordered by id
func (r *WordRepository) GetAll() ([]models.VocabularyItem, error) {
	var words []models.VocabularyItem
	err := DB.Select(&words, "SELECT * FROM words ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %v", err)
	}
	return words, nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(id int) (*models.VocabularyItem, error) {
	var word models.VocabularyItem
	query := "SELECT * FROM words WHERE id = ?"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", -1)
	}
	err := DB.Get(&word, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %v", err)
	}
	return &word, nil
}

// GetByDifficulty returns all words of a single tier
func (r *WordRepository) GetByDifficulty(difficulty models.Difficulty) ([]models.VocabularyItem, error) {
	var words []models.VocabularyItem
	query := "SELECT * FROM words WHERE difficulty = ? ORDER BY id"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", -1)
	}
	err := DB.Select(&words, query, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by difficulty: %v", err)
	}
	return words, nil
}

// Upsert inserts a word or updates the existing row with the same id
func (r *WordRepository) Upsert(word *models.VocabularyItem) error {
	query := `
		INSERT INTO words (id, english, translation, phonetic, category, difficulty)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			english = excluded.english,
			translation = excluded.translation,
			phonetic = excluded.phonetic,
			category = excluded.category,
			difficulty = excluded.difficulty
	`
	if DB.DriverName() == "postgres" {
		for i := 1; strings.Contains(query, "?"); i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	_, err := DB.Exec(query,
		word.ID,
		word.English,
		word.Translation,
		word.Phonetic,
		word.Category,
		word.Difficulty,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert word: %v", err)
	}
	return nil
}

// Delete removes a word
func (r *WordRepository) Delete(id int) error {
	query := "DELETE FROM words WHERE id = ?"
	if DB.DriverName() == "postgres" {
		query = strings.Replace(query, "?", "$1", -1)
	}
	_, err := DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %v", err)
	}
	return nil
}

// Count returns the total number of catalog words
func (r *WordRepository) Count() (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM words")
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %v", err)
	}
	return count, nil
}
