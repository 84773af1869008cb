package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/vocatrain/internal/database"
	"github.com/example/vocatrain/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	EnglishColumn     string // Column with the English word
	TranslationColumn string // Column with the translation
	PhoneticColumn    string // Column with the phonetic spelling
	CategoryColumn    string // Column with the category
	DifficultyColumn  string // Column with the difficulty tier
	SentencesColumn   string // Column with the example sentences
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		EnglishColumn:     "A",
		TranslationColumn: "B",
		PhoneticColumn:    "C",
		CategoryColumn:    "D",
		DifficultyColumn:  "E",
		SentencesColumn:   "F",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Words          int
	Sentences      int
	Skipped        int
	Errors         []string
}

// importer carries the shared row-processing state. Word ids come from the
// row position and sentence ids from a running counter, so reimporting the
// same file always produces the same ids.
type importer struct {
	words          *database.WordRepository
	sentences      *database.SentenceRepository
	result         *ImportResult
	nextSentenceID int
}

// ImportCatalog imports the vocabulary catalog from an Excel or CSV file
func ImportCatalog(config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	imp := &importer{
		words:          database.NewWordRepository(),
		sentences:      database.NewSentenceRepository(),
		result:         &ImportResult{Errors: make([]string, 0)},
		nextSentenceID: 1,
	}
	if ext == ".csv" {
		return imp.importFromCSV(config)
	}
	return imp.importFromExcel(config)
}

// importFromExcel imports the catalog from an Excel file
func (imp *importer) importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	wordID := 0
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		imp.result.TotalProcessed++
		wordID++
		if err := imp.processRow(row, config, wordID); err != nil {
			imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return imp.result, nil
}

// importFromCSV imports the catalog from a CSV file with the same column
// order as the Excel layout.
func (imp *importer) importFromCSV(config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	rowNum := 0
	wordID := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		imp.result.TotalProcessed++
		wordID++
		if err := imp.processRow(row, config, wordID); err != nil {
			imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return imp.result, nil
}

// processRow upserts one word and its example sentences
func (imp *importer) processRow(row []string, config ImportConfig, wordID int) error {
	english := cell(row, config.EnglishColumn)
	translation := cell(row, config.TranslationColumn)
	phonetic := cell(row, config.PhoneticColumn)
	category := cell(row, config.CategoryColumn)
	difficulty := cell(row, config.DifficultyColumn)
	sentencesCell := cell(row, config.SentencesColumn)

	if english == "" || translation == "" {
		imp.result.Skipped++
		return nil
	}

	word := &models.VocabularyItem{
		ID:          wordID,
		English:     english,
		Translation: translation,
		Phonetic:    phonetic,
		Category:    category,
		Difficulty:  parseDifficulty(difficulty),
	}
	if err := imp.words.Upsert(word); err != nil {
		return err
	}
	imp.result.Words++

	// Reimports replace the word's sentences wholesale
	if err := imp.sentences.DeleteByWord(wordID); err != nil {
		return err
	}
	for _, pair := range parseSentences(sentencesCell) {
		sentence := &models.SentenceItem{
			ID:          imp.nextSentenceID,
			WordID:      wordID,
			Text:        pair[0],
			Translation: pair[1],
		}
		imp.nextSentenceID++
		if err := imp.sentences.Upsert(sentence); err != nil {
			return err
		}
		imp.result.Sentences++
	}
	return nil
}

// parseSentences splits a sentences cell. Pairs are separated by "|" and
// each pair reads "sentence = translation".
func parseSentences(raw string) [][2]string {
	var out [][2]string
	for _, chunk := range strings.Split(raw, "|") {
		parts := strings.SplitN(chunk, "=", 2)
		text := strings.TrimSpace(parts[0])
		if text == "" {
			continue
		}
		translation := ""
		if len(parts) == 2 {
			translation = strings.TrimSpace(parts[1])
		}
		out = append(out, [2]string{text, translation})
	}
	return out
}

// parseDifficulty maps a cell value to a tier, defaulting to beginner
func parseDifficulty(raw string) models.Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "medium", "2":
		return models.DifficultyMedium
	case "hard", "3":
		return models.DifficultyHard
	default:
		return models.DifficultyBeginner
	}
}

// cell returns the trimmed value of the named column, or "" when the row is
// too short.
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts an Excel column letter ("A", "B", ... "AA") to a
// zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	idx := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
