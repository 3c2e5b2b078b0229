package domain

import "time"

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillInBlank    QuestionType = "fill_in_blank"
)

// Answer is one option of a question. IsCorrect is meaningful for the two
// choice types; for fill_in_blank every listed answer is an accepted string
// matched against free-text input.
type Answer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models one quiz question with its ordered answers.
type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Points  int          `json:"points"` // defaults to 1 if zero
	Answers []Answer     `json:"answers"`
}

// Quiz is the catalog definition of a quiz: metadata, passing score, optional
// time limit, and ordered questions. It is owned by the content-management
// side; the engine only reads it.
type Quiz struct {
	ID               string     `json:"id"`
	ChapterID        string     `json:"chapterId"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	PassingScore     int        `json:"passingScore"`               // percentage, 1-100
	TimeLimitMinutes *int       `json:"timeLimitMinutes,omitempty"` // nil = unlimited
	IsActive         bool       `json:"isActive"`
	Questions        []Question `json:"questions"`
}

// Response is a user's answer to a single question. Exactly one of AnswerID
// (choice types) and Text (fill_in_blank) is meaningful; an unanswered
// question is simply absent from the attempt's response map.
type Response struct {
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId,omitempty"`
	Text       string `json:"text,omitempty"`
}

// QuizSnapshot is the frozen shape of a quiz captured when an attempt starts.
// Scoring always runs against the snapshot so later edits to the live quiz
// cannot change the grading of a running or finished attempt.
type QuizSnapshot struct {
	QuizID       string     `json:"quizId"`
	Title        string     `json:"title"`
	PassingScore int        `json:"passingScore"`
	Questions    []Question `json:"questions"`
}

// Attempt is one user's timed run at a quiz, from start to terminal
// submission. Created by start; mutated exactly once, by submit.
type Attempt struct {
	ID               string              `json:"id"`
	UserID           string              `json:"userId"`
	QuizID           string              `json:"quizId"`
	ChapterID        string              `json:"chapterId"`
	StartedAt        time.Time           `json:"startedAt"`
	TimeLimitMinutes *int                `json:"timeLimitMinutes,omitempty"`
	Snapshot         QuizSnapshot        `json:"snapshot"`
	Responses        map[string]Response `json:"responses"`
	SubmittedAt      *time.Time          `json:"submittedAt,omitempty"`
	Score            *int                `json:"score,omitempty"` // percentage, nil until submitted
	PointsEarned     int                 `json:"pointsEarned"`
	PointsPossible   int                 `json:"pointsPossible"`
	Passed           *bool               `json:"passed,omitempty"`
}

// InProgress reports whether the attempt has not reached its terminal state.
func (a Attempt) InProgress() bool { return a.SubmittedAt == nil }

// Expired reports whether the attempt's time limit has elapsed at the given
// server time. Attempts without a limit never expire.
func (a Attempt) Expired(now time.Time) bool {
	if a.TimeLimitMinutes == nil {
		return false
	}
	return now.Sub(a.StartedAt) > time.Duration(*a.TimeLimitMinutes)*time.Minute
}

// ScoreResult is the outcome of scoring one set of responses.
type ScoreResult struct {
	PointsEarned   int  `json:"pointsEarned"`
	PointsPossible int  `json:"pointsPossible"`
	Percentage     int  `json:"score"`
	Passed         bool `json:"passed"`
}

// AttemptResult is the terminal state written by submit: the final responses
// plus the computed score. Once written the attempt is immutable.
type AttemptResult struct {
	SubmittedAt time.Time
	Responses   map[string]Response
	ScoreResult
}

// ChapterStatus summarizes a user's recorded outcomes for one chapter's quiz,
// derived on demand from the attempt ledger and never persisted redundantly.
type ChapterStatus struct {
	Passed      bool      `json:"passed"`
	BestScore   int       `json:"bestScore"`
	AttemptDate time.Time `json:"attemptDate"`
}
