package catalog

import (
	"fmt"

	"github.com/example/vocatrain/internal/database"
	"github.com/example/vocatrain/pkg/models"
)

// Catalog is the immutable in-memory view of the vocabulary reference data.
// It is loaded once at startup; every id used anywhere else in the app must
// resolve here.
type Catalog struct {
	words        []models.VocabularyItem
	wordByID     map[int]*models.VocabularyItem
	sentenceByID map[int]*models.SentenceItem
}

// Empty returns a catalog with no words. Session generation and tier
// computation degrade to "nothing available" instead of failing.
func Empty() *Catalog {
	return &Catalog{
		wordByID:     make(map[int]*models.VocabularyItem),
		sentenceByID: make(map[int]*models.SentenceItem),
	}
}

// Load reads all words and sentences from the database and indexes them
func Load(words *database.WordRepository, sentences *database.SentenceRepository) (*Catalog, error) {
	allWords, err := words.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog words: %v", err)
	}
	allSentences, err := sentences.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog sentences: %v", err)
	}
	return New(allWords, allSentences), nil
}

// New builds a catalog from already-loaded records, attaching each sentence
// to its parent word. Sentences whose word_id does not resolve are dropped.
func New(words []models.VocabularyItem, sentences []models.SentenceItem) *Catalog {
	c := &Catalog{
		words:        words,
		wordByID:     make(map[int]*models.VocabularyItem, len(words)),
		sentenceByID: make(map[int]*models.SentenceItem, len(sentences)),
	}
	for i := range c.words {
		c.words[i].Sentences = nil
		c.wordByID[c.words[i].ID] = &c.words[i]
	}
	for _, s := range sentences {
		word, ok := c.wordByID[s.WordID]
		if !ok {
			continue
		}
		word.Sentences = append(word.Sentences, s)
	}
	for i := range c.words {
		for j := range c.words[i].Sentences {
			s := &c.words[i].Sentences[j]
			c.sentenceByID[s.ID] = s
		}
	}
	return c
}

// Size returns the number of words in the catalog
func (c *Catalog) Size() int {
	return len(c.words)
}

// Words returns all catalog words
func (c *Catalog) Words() []models.VocabularyItem {
	return c.words
}

// WordByID resolves a word id
func (c *Catalog) WordByID(id int) (*models.VocabularyItem, bool) {
	w, ok := c.wordByID[id]
	return w, ok
}

// SentenceByID resolves a sentence id
func (c *Catalog) SentenceByID(id int) (*models.SentenceItem, bool) {
	s, ok := c.sentenceByID[id]
	return s, ok
}

// CountByTier returns the number of words in a single tier
func (c *Catalog) CountByTier(tier models.Difficulty) int {
	count := 0
	for i := range c.words {
		if c.words[i].Difficulty == tier {
			count++
		}
	}
	return count
}

// WordsAtOrBelow returns all words whose tier is at or below the given tier,
// preserving catalog order.
func (c *Catalog) WordsAtOrBelow(tier models.Difficulty) []models.VocabularyItem {
	var out []models.VocabularyItem
	for i := range c.words {
		if rank := c.words[i].Difficulty.Rank(); rank >= 0 && rank <= tier.Rank() {
			out = append(out, c.words[i])
		}
	}
	return out
}

// SentencesForWords returns the sentences belonging to the given word ids,
// preserving word order.
func (c *Catalog) SentencesForWords(wordIDs []int) []models.SentenceItem {
	var out []models.SentenceItem
	for _, id := range wordIDs {
		if w, ok := c.wordByID[id]; ok {
			out = append(out, w.Sentences...)
		}
	}
	return out
}
