package models

// ProgressSchemaVersion is written on every save. The loader migrates older
// documents up to this shape before handing them to the store.
const ProgressSchemaVersion = 2

// ProgressState is the durable record of everything the learner has done.
// It is persisted as a single JSON document and mutated only through the
// progress store API.
type ProgressState struct {
	SchemaVersion    int   `json:"schema_version"`
	LearnedWords     []int `json:"learned_words"`
	ReviewWords      []int `json:"review_words"`
	LearnedSentences []int `json:"learned_sentences"`
	ReviewSentences  []int `json:"review_sentences"`
	StreakCount      int   `json:"streak_count"`
	// LastStudyDate is a YYYY-MM-DD date string, empty if the learner has
	// never studied. The streak increments at most once per calendar day.
	LastStudyDate  string `json:"last_study_date"`
	TotalStudyTime int    `json:"total_study_time"` // minutes, never decreases
	// UsageTracking maps a YYYY-MM-DD date to "weekday-hour" buckets, e.g.
	// "Mon-14", counting active minutes in that bucket.
	UsageTracking map[string]map[string]int `json:"usage_tracking"`
	LastQuizScore *QuizScore                `json:"last_quiz_score"`
	QuizzesTaken  int                       `json:"quizzes_taken"`
}

// QuizScore records the outcome of one completed quiz
type QuizScore struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Date       string `json:"date"`
}

// NewProgressState returns an empty state at the current schema version
func NewProgressState() *ProgressState {
	return &ProgressState{
		SchemaVersion: ProgressSchemaVersion,
		UsageTracking: make(map[string]map[string]int),
	}
}

// ProgressSummary is the read-only view handed to the presentation layer
type ProgressSummary struct {
	LearnedWords     int        `json:"learned_words"`
	ReviewWords      int        `json:"review_words"`
	LearnedSentences int        `json:"learned_sentences"`
	ReviewSentences  int        `json:"review_sentences"`
	StreakCount      int        `json:"streak_count"`
	TotalStudyTime   int        `json:"total_study_time"`
	QuizzesTaken     int        `json:"quizzes_taken"`
	LastQuizScore    *QuizScore `json:"last_quiz_score"`
}
