package session

import (
	"time"

	"github.com/example/vocatrain/pkg/models"
)

const (
	// MinQuizWords is the number of learned words required before a quiz
	// can be generated
	MinQuizWords = 10
	// QuizLength is the fixed number of questions per quiz
	QuizLength = 5
	// quizOptions counts the choices per question, correct one included
	quizOptions = 4
)

// Quiz is one run of multiple-choice questions over learned words
type Quiz struct {
	Questions    []models.QuizQuestion
	CurrentIndex int
	Score        int
	PoolLength   int
	CreatedAt    time.Time
}

// Current returns the question under the cursor
func (q *Quiz) Current() models.QuizQuestion {
	return q.Questions[q.CurrentIndex]
}

// Finished reports whether every question has been answered
func (q *Quiz) Finished() bool {
	return q.CurrentIndex >= len(q.Questions)
}

// QuizSession resumes the saved quiz when its fingerprint still matches the
// learned-word count, otherwise generates a fresh one. A nil quiz with no
// error means the learner has not learned enough words yet.
func (g *Generator) QuizSession() (*Quiz, error) {
	state := g.store.Snapshot()
	if snap, ok := g.snaps.LoadQuiz(len(state.LearnedWords)); ok {
		return &Quiz{
			Questions:    snap.Questions,
			CurrentIndex: snap.CurrentIndex,
			Score:        snap.Score,
			PoolLength:   snap.PoolLength,
			CreatedAt:    snap.CreatedAt,
		}, nil
	}

	questions := g.GenerateQuiz()
	if len(questions) == 0 {
		return nil, ErrNeedMoreWords
	}
	quiz := &Quiz{
		Questions:  questions,
		PoolLength: len(state.LearnedWords),
		CreatedAt:  time.Now(),
	}
	g.persistQuiz(quiz)
	return quiz, nil
}

// GenerateQuiz builds exactly QuizLength questions, or none when fewer than
// MinQuizWords words are learned. Each question pairs one learned word with
// three distractor translations drawn from the rest of the catalog.
func (g *Generator) GenerateQuiz() []models.QuizQuestion {
	state := g.store.Snapshot()
	if len(state.LearnedWords) < MinQuizWords {
		return nil
	}

	// Pick the correct words without replacement across the whole quiz
	picked := append([]int(nil), state.LearnedWords...)
	g.rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	questions := make([]models.QuizQuestion, 0, QuizLength)
	for _, id := range picked {
		if len(questions) == QuizLength {
			break
		}
		word, ok := g.cat.WordByID(id)
		if !ok {
			continue
		}
		distractors := g.distractors(word, quizOptions-1)
		if len(distractors) < quizOptions-1 {
			continue
		}

		options := append(distractors, word.Translation)
		correctIndex := len(options) - 1
		g.rnd.Shuffle(len(options), func(i, j int) {
			if i == correctIndex {
				correctIndex = j
			} else if j == correctIndex {
				correctIndex = i
			}
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, models.QuizQuestion{
			WordID:       word.ID,
			Prompt:       word.English,
			Options:      options,
			CorrectIndex: correctIndex,
		})
	}
	if len(questions) < QuizLength {
		return nil
	}
	return questions
}

// Answer grades the current question and moves the cursor. Wrong answers
// push the word into the review set. When the last question is answered the
// final score is recorded and the snapshot cleared, so the next QuizSession
// call regenerates from scratch.
func (g *Generator) Answer(quiz *Quiz, choice int) bool {
	question := quiz.Current()
	correct := choice == question.CorrectIndex
	if correct {
		quiz.Score++
	} else {
		g.store.MarkWordReview(question.WordID)
	}
	quiz.CurrentIndex++

	if quiz.Finished() {
		g.store.RecordQuizResult(quiz.Score, len(quiz.Questions))
		g.snaps.Clear(models.SessionQuiz)
		return correct
	}
	// A wrong answer shrinks the learned set; re-fingerprint against the
	// current pool so the quiz's own side effects never invalidate its
	// snapshot. External changes still do.
	quiz.PoolLength = len(g.store.Snapshot().LearnedWords)
	g.persistQuiz(quiz)
	return correct
}

// distractors samples translations from the catalog, excluding the word
// being asked about.
func (g *Generator) distractors(word *models.VocabularyItem, count int) []string {
	all := g.cat.Words()
	candidates := make([]models.VocabularyItem, 0, len(all))
	for _, w := range all {
		if w.ID != word.ID {
			candidates = append(candidates, w)
		}
	}
	g.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	options := make([]string, 0, count)
	for _, w := range candidates {
		if len(options) == count {
			break
		}
		options = append(options, w.Translation)
	}
	return options
}

func (g *Generator) persistQuiz(quiz *Quiz) {
	g.snaps.SaveQuiz(models.QuizSnapshot{
		Questions:    quiz.Questions,
		CurrentIndex: quiz.CurrentIndex,
		Score:        quiz.Score,
		PoolLength:   quiz.PoolLength,
		CreatedAt:    quiz.CreatedAt,
	})
}
