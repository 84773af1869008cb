package session

import (
	"testing"

	"github.com/example/vocatrain/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizRequiresTenLearnedWords(t *testing.T) {
	env := newTestEnv(t, 20, 0)
	for id := 1; id <= 9; id++ {
		env.store.MarkWordLearned(id)
	}

	assert.Nil(t, env.gen.GenerateQuiz())

	_, err := env.gen.QuizSession()
	assert.Equal(t, ErrNeedMoreWords, err)
}

func TestQuizShape(t *testing.T) {
	env := newTestEnv(t, 20, 0)
	for id := 1; id <= 10; id++ {
		env.store.MarkWordLearned(id)
	}

	questions := env.gen.GenerateQuiz()
	require.Len(t, questions, QuizLength)

	seen := make(map[int]bool)
	for _, q := range questions {
		assert.False(t, seen[q.WordID], "word %d asked twice", q.WordID)
		seen[q.WordID] = true

		word, ok := env.cat.WordByID(q.WordID)
		require.True(t, ok)
		assert.Equal(t, word.English, q.Prompt)

		require.Len(t, q.Options, quizOptions)
		require.GreaterOrEqual(t, q.CorrectIndex, 0)
		require.Less(t, q.CorrectIndex, quizOptions)
		assert.Equal(t, word.Translation, q.Options[q.CorrectIndex])

		// Distractors come from other catalog words, never the answer itself
		for i, option := range q.Options {
			if i != q.CorrectIndex {
				assert.NotEqual(t, word.Translation, option)
			}
		}
	}
}

func TestQuizQuestionsDrawFromLearnedWordsOnly(t *testing.T) {
	env := newTestEnv(t, 30, 0)
	for id := 1; id <= 12; id++ {
		env.store.MarkWordLearned(id)
	}

	questions := env.gen.GenerateQuiz()
	require.Len(t, questions, QuizLength)
	for _, q := range questions {
		assert.LessOrEqual(t, q.WordID, 12)
	}
}

func TestWrongAnswerMovesWordToReview(t *testing.T) {
	env := newTestEnv(t, 20, 0)
	for id := 1; id <= 10; id++ {
		env.store.MarkWordLearned(id)
	}

	quiz, err := env.gen.QuizSession()
	require.NoError(t, err)

	question := quiz.Current()
	wrong := (question.CorrectIndex + 1) % quizOptions
	correct := env.gen.Answer(quiz, wrong)

	assert.False(t, correct)
	assert.Zero(t, quiz.Score)
	state := env.store.Snapshot()
	assert.Contains(t, state.ReviewWords, question.WordID)
	assert.NotContains(t, state.LearnedWords, question.WordID)
}

func TestFinishingQuizRecordsScoreAndClearsSnapshot(t *testing.T) {
	env := newTestEnv(t, 20, 0)
	for id := 1; id <= 10; id++ {
		env.store.MarkWordLearned(id)
	}

	quiz, err := env.gen.QuizSession()
	require.NoError(t, err)

	for !quiz.Finished() {
		env.gen.Answer(quiz, quiz.Current().CorrectIndex)
	}

	assert.Equal(t, QuizLength, quiz.Score)
	state := env.store.Snapshot()
	require.NotNil(t, state.LastQuizScore)
	assert.Equal(t, QuizLength, state.LastQuizScore.Score)
	assert.Equal(t, 100, state.LastQuizScore.Percentage)
	assert.Equal(t, 1, state.QuizzesTaken)

	_, found := env.docs.data[snapshotKey(models.SessionQuiz)]
	assert.False(t, found)
}

func TestQuizResumesMidway(t *testing.T) {
	env := newTestEnv(t, 20, 0)
	for id := 1; id <= 10; id++ {
		env.store.MarkWordLearned(id)
	}

	quiz, err := env.gen.QuizSession()
	require.NoError(t, err)
	env.gen.Answer(quiz, quiz.Current().CorrectIndex)
	env.gen.Answer(quiz, quiz.Current().CorrectIndex)

	gen2 := NewGenerator(env.cat, env.store, env.snaps)
	resumed, err := gen2.QuizSession()
	require.NoError(t, err)

	assert.Equal(t, quiz.Questions, resumed.Questions)
	assert.Equal(t, 2, resumed.CurrentIndex)
	assert.Equal(t, 2, resumed.Score)
}

func TestWrongAnswerKeepsQuizResumable(t *testing.T) {
	env := newTestEnv(t, 20, 0)
	for id := 1; id <= 10; id++ {
		env.store.MarkWordLearned(id)
	}

	quiz, err := env.gen.QuizSession()
	require.NoError(t, err)

	// The wrong answer drops the asked word out of the learned set; the
	// quiz's own side effect must not orphan its snapshot after a restart.
	wrong := (quiz.Current().CorrectIndex + 1) % quizOptions
	env.gen.Answer(quiz, wrong)
	require.Len(t, env.store.Snapshot().LearnedWords, 9)

	gen2 := NewGenerator(env.cat, env.store, env.snaps)
	resumed, err := gen2.QuizSession()
	require.NoError(t, err)
	assert.Equal(t, quiz.Questions, resumed.Questions)
	assert.Equal(t, 1, resumed.CurrentIndex)
}

func TestQuizSnapshotInvalidatedWhenLearnedSetChanges(t *testing.T) {
	env := newTestEnv(t, 20, 0)
	for id := 1; id <= 10; id++ {
		env.store.MarkWordLearned(id)
	}

	quiz, err := env.gen.QuizSession()
	require.NoError(t, err)
	env.gen.Answer(quiz, quiz.Current().CorrectIndex)

	// Learning another word changes the pool fingerprint: the saved quiz no
	// longer resumes and a fresh one starts from question zero.
	env.store.MarkWordLearned(11)
	gen2 := NewGenerator(env.cat, env.store, env.snaps)
	fresh, err := gen2.QuizSession()
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.CurrentIndex)
	assert.Zero(t, fresh.Score)
	assert.Equal(t, 11, fresh.PoolLength)
}
