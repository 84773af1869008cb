package excel

import (
	"testing"

	"github.com/example/vocatrain/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSentences(t *testing.T) {
	pairs := parseSentences("The cat sleeps. = Кот спит. | A black cat. = Чёрный кот.")
	require.Len(t, pairs, 2)
	assert.Equal(t, [2]string{"The cat sleeps.", "Кот спит."}, pairs[0])
	assert.Equal(t, [2]string{"A black cat.", "Чёрный кот."}, pairs[1])
}

func TestParseSentencesWithoutTranslation(t *testing.T) {
	pairs := parseSentences("No translation here")
	require.Len(t, pairs, 1)
	assert.Equal(t, [2]string{"No translation here", ""}, pairs[0])
}

func TestParseSentencesEmpty(t *testing.T) {
	assert.Empty(t, parseSentences(""))
	assert.Empty(t, parseSentences(" | | "))
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, models.DifficultyMedium, parseDifficulty("medium"))
	assert.Equal(t, models.DifficultyMedium, parseDifficulty(" 2 "))
	assert.Equal(t, models.DifficultyHard, parseDifficulty("HARD"))
	assert.Equal(t, models.DifficultyHard, parseDifficulty("3"))
	assert.Equal(t, models.DifficultyBeginner, parseDifficulty("beginner"))
	assert.Equal(t, models.DifficultyBeginner, parseDifficulty(""))
	assert.Equal(t, models.DifficultyBeginner, parseDifficulty("unknown"))
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 1, columnToIndex("b"))
	assert.Equal(t, 25, columnToIndex("Z"))
	assert.Equal(t, 26, columnToIndex("AA"))
	assert.Equal(t, -1, columnToIndex("1"))
}

func TestCellHandlesShortRows(t *testing.T) {
	row := []string{" cat ", "кот"}
	assert.Equal(t, "cat", cell(row, "A"))
	assert.Equal(t, "кот", cell(row, "B"))
	assert.Equal(t, "", cell(row, "F"))
	assert.Equal(t, "", cell(row, ""))
}
