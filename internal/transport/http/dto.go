package http

import (
	"fmt"
	"time"

	"quiz-result-service/internal/domain"
)

type submitAnswerRequest struct {
	QuestionID        int64   `json:"questionId" binding:"required"`
	SelectedOptionIDs []int64 `json:"selectedOptionIds"`
	EnteredText       *string `json:"enteredText"`
}

type submitResultRequest struct {
	QuizID    int64                 `json:"quizId" binding:"required,gt=0"`
	TimeSpent *int                  `json:"timeSpent" binding:"required,min=0,max=2147483647"` // seconds
	Answers   []submitAnswerRequest `json:"answers" binding:"dive"`
}

func (r submitResultRequest) toSubmission() domain.Submission {
	answers := make([]domain.SubmittedAnswer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, domain.SubmittedAnswer{
			QuestionID:        a.QuestionID,
			SelectedOptionIDs: a.SelectedOptionIDs,
			EnteredText:       a.EnteredText,
		})
	}
	return domain.Submission{
		QuizID:           r.QuizID,
		TimeSpentSeconds: *r.TimeSpent,
		Answers:          answers,
	}
}

type resultResponse struct {
	ID               int64                 `json:"id"`
	UserID           int64                 `json:"userId"`
	QuizID           int64                 `json:"quizId"`
	QuizTitle        string                `json:"quizTitle"`
	CorrectCount     int                   `json:"correctCount"`
	TotalQuestions   int                   `json:"totalQuestions"`
	SuccessRate      float64               `json:"successRate"`
	TimeSpent        string                `json:"timeSpent"`
	TimeSpentSeconds int64                 `json:"timeSpentSeconds"`
	SubmittedAt      time.Time             `json:"submittedAt"`
	TotalPoints      int                   `json:"totalPoints"`
	MaxPoints        int                   `json:"maxPoints"`
	Answers          []domain.GradedAnswer `json:"answers,omitempty"`
}

func newResultResponse(r domain.GradedResult) resultResponse {
	return resultResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		QuizID:           r.QuizID,
		QuizTitle:        r.QuizTitle,
		CorrectCount:     r.CorrectCount,
		TotalQuestions:   r.TotalQuestions,
		SuccessRate:      r.SuccessRate,
		TimeSpent:        formatTimeSpent(r.TimeSpent),
		TimeSpentSeconds: int64(r.TimeSpent / time.Second),
		SubmittedAt:      r.SubmittedAt.UTC(),
		TotalPoints:      r.TotalPoints,
		MaxPoints:        r.MaxPoints,
		Answers:          r.Answers,
	}
}

func newResultResponses(results []domain.GradedResult) []resultResponse {
	out := make([]resultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, newResultResponse(r))
	}
	return out
}

// formatTimeSpent renders d as HH:MM:SS; hours may exceed two digits.
func formatTimeSpent(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

type createOptionRequest struct {
	Text      string `json:"text" binding:"required,max=500"`
	IsCorrect bool   `json:"isCorrect"`
}

type createQuestionRequest struct {
	Text           string                `json:"text" binding:"required,max=1000"`
	Type           domain.QuestionType   `json:"type" binding:"required"`
	Points         int                   `json:"points" binding:"required,gt=0"`
	ExpectedAnswer *string               `json:"expectedAnswer"`
	Options        []createOptionRequest `json:"options" binding:"dive"`
}

type createQuizRequest struct {
	Title            string                  `json:"title" binding:"required,max=200"`
	Description      string                  `json:"description" binding:"max=1000"`
	Category         string                  `json:"category" binding:"required,max=100"`
	Difficulty       string                  `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	TimeLimitSeconds int                     `json:"timeLimitSeconds" binding:"required,gt=0"`
	Questions        []createQuestionRequest `json:"questions" binding:"dive"`
}

// updateQuizRequest carries quiz metadata only; questions cannot be edited.
type updateQuizRequest struct {
	Title            string `json:"title" binding:"required,max=200"`
	Description      string `json:"description" binding:"max=1000"`
	Category         string `json:"category" binding:"required,max=100"`
	Difficulty       string `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	TimeLimitSeconds int    `json:"timeLimitSeconds" binding:"required,gt=0"`
}

func (r updateQuizRequest) toQuiz() domain.Quiz {
	return domain.Quiz{
		Title:            r.Title,
		Description:      r.Description,
		Category:         r.Category,
		Difficulty:       r.Difficulty,
		TimeLimitSeconds: r.TimeLimitSeconds,
	}
}

func (r createQuizRequest) toQuiz() domain.Quiz {
	quiz := domain.Quiz{
		Title:            r.Title,
		Description:      r.Description,
		Category:         r.Category,
		Difficulty:       r.Difficulty,
		TimeLimitSeconds: r.TimeLimitSeconds,
		Questions:        make([]domain.Question, 0, len(r.Questions)),
	}
	for _, q := range r.Questions {
		question := domain.Question{
			Text:           q.Text,
			Type:           q.Type,
			Points:         q.Points,
			ExpectedAnswer: q.ExpectedAnswer,
			Options:        make([]domain.Option, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, domain.Option{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}
