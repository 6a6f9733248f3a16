package domain

import (
	"strings"
	"time"
)

// QuestionType controls how a submitted answer is compared against the key.
type QuestionType string

const (
	SingleChoice   QuestionType = "SingleChoice"
	MultipleChoice QuestionType = "MultipleChoice"
	TrueFalse      QuestionType = "TrueFalse"
	TextAnswer     QuestionType = "TextAnswer"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, TrueFalse, TextAnswer:
		return true
	}
	return false
}

// Option represents a possible answer for a choice question.
type Option struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// Question is one entry of a quiz answer key.
type Question struct {
	ID             int64        `json:"id" yaml:"id"`
	Text           string       `json:"text" yaml:"text"`
	Type           QuestionType `json:"type" yaml:"type"`
	Points         int          `json:"points" yaml:"points"`
	ExpectedAnswer *string      `json:"expectedAnswer,omitempty" yaml:"expectedAnswer,omitempty"`
	Options        []Option     `json:"options" yaml:"options"`
}

// Quiz is a fully materialized snapshot of a quiz and its answer key.
// Question order is significant.
type Quiz struct {
	ID               int64      `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description" yaml:"description"`
	Category         string     `json:"category" yaml:"category"`
	Difficulty       string     `json:"difficulty" yaml:"difficulty"`
	TimeLimitSeconds int        `json:"timeLimitSeconds" yaml:"timeLimitSeconds"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

// MaxPoints is the sum of points over every question in the quiz.
func (q Quiz) MaxPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Summary drops the questions and keeps only the count.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Category:         q.Category,
		Difficulty:       q.Difficulty,
		TimeLimitSeconds: q.TimeLimitSeconds,
		QuestionCount:    len(q.Questions),
	}
}

// WithoutAnswerKey returns a copy safe to hand to quiz takers.
func (q Quiz) WithoutAnswerKey() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.ExpectedAnswer = nil
		opts := make([]Option, len(question.Options))
		for j, opt := range question.Options {
			opts[j] = Option{ID: opt.ID, Text: opt.Text}
		}
		question.Options = opts
		out.Questions[i] = question
	}
	return out
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Difficulty       string `json:"difficulty"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"`
	QuestionCount    int    `json:"questionCount"`
}

// QuizFilter narrows quiz listings. Empty fields match everything.
type QuizFilter struct {
	Category   string
	Difficulty string
}

// Matches compares case-insensitively.
func (f QuizFilter) Matches(q QuizSummary) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, q.Category) {
		return false
	}
	if f.Difficulty != "" && !strings.EqualFold(f.Difficulty, q.Difficulty) {
		return false
	}
	return true
}

// SubmittedAnswer is what a quiz taker sent for one question.
// A nil SelectedOptionIDs means no selection was sent.
type SubmittedAnswer struct {
	QuestionID        int64
	SelectedOptionIDs []int64
	EnteredText       *string
}

// Submission is a full attempt at a quiz.
type Submission struct {
	QuizID           int64
	TimeSpentSeconds int
	Answers          []SubmittedAnswer
}

// GradedAnswer is the per-question outcome, denormalized for answer review.
type GradedAnswer struct {
	QuestionID        int64    `json:"questionId"`
	QuestionText      string   `json:"questionText"`
	Points            int      `json:"points"`
	IsCorrect         bool     `json:"isCorrect"`
	PointsEarned      int      `json:"pointsEarned"`
	SelectedOptionIDs []int64  `json:"selectedOptionIds,omitempty"`
	EnteredText       *string  `json:"enteredText,omitempty"`
	Options           []Option `json:"options"`
}

// GradedResult is the immutable scored record of one submission.
type GradedResult struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"userId"`
	QuizID         int64          `json:"quizId"`
	QuizTitle      string         `json:"quizTitle"`
	CorrectCount   int            `json:"correctCount"`
	TotalQuestions int            `json:"totalQuestions"`
	SuccessRate    float64        `json:"successRate"`
	TotalPoints    int            `json:"totalPoints"`
	MaxPoints      int            `json:"maxPoints"`
	TimeSpent      time.Duration  `json:"timeSpent"`
	SubmittedAt    time.Time      `json:"submittedAt"`
	Answers        []GradedAnswer `json:"answers,omitempty"`
}

// Summary is the result without its answer detail, as used by list views.
func (r GradedResult) Summary() GradedResult {
	r.Answers = nil
	return r
}

// LeaderboardEntry is one ranked row of a quiz leaderboard.
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	ResultID         int64     `json:"resultId"`
	UserID           int64     `json:"userId"`
	TotalPoints      int       `json:"totalPoints"`
	MaxPoints        int       `json:"maxPoints"`
	CorrectCount     int       `json:"correctCount"`
	SuccessRate      float64   `json:"successRate"`
	TimeSpentSeconds int64     `json:"timeSpentSeconds"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

// Leaderboard captures the ordered scoreboard for a quiz.
type Leaderboard struct {
	QuizID    int64              `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
