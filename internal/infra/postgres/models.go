package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-result-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID               int64     `bun:"id,pk,autoincrement"`
	Title            string    `bun:"title"`
	Description      string    `bun:"description"`
	Category         string    `bun:"category"`
	Difficulty       string    `bun:"difficulty"`
	TimeLimitSeconds int       `bun:"time_limit_seconds"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID             int64   `bun:"id,pk,autoincrement"`
	QuizID         int64   `bun:"quiz_id"`
	Position       int     `bun:"position"`
	Text           string  `bun:"text"`
	Type           string  `bun:"type"`
	Points         int     `bun:"points"`
	ExpectedAnswer *string `bun:"expected_answer"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:options"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id"`
	Position   int    `bun:"position"`
	Text       string `bun:"text"`
	IsCorrect  bool   `bun:"is_correct"`
}

type quizSummaryRow struct {
	ID               int64  `bun:"id"`
	Title            string `bun:"title"`
	Description      string `bun:"description"`
	Category         string `bun:"category"`
	Difficulty       string `bun:"difficulty"`
	TimeLimitSeconds int    `bun:"time_limit_seconds"`
	QuestionCount    int    `bun:"question_count"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID               int64        `bun:"id,pk,autoincrement"`
	UserID           int64        `bun:"user_id"`
	QuizID           int64        `bun:"quiz_id"`
	QuizTitle        string       `bun:"quiz_title"`
	CorrectCount     int          `bun:"correct_count"`
	TotalQuestions   int          `bun:"total_questions"`
	SuccessRate      float64      `bun:"success_rate"`
	TotalPoints      int          `bun:"total_points"`
	MaxPoints        int          `bun:"max_points"`
	TimeSpentSeconds int64        `bun:"time_spent_seconds"`
	SubmittedAt      time.Time    `bun:"submitted_at"`
	Answers          []*answerRow `bun:"rel:has-many,join:id=result_id"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:result_answers,alias:ra"`

	ID                int64           `bun:"id,pk,autoincrement"`
	ResultID          int64           `bun:"result_id"`
	Position          int             `bun:"position"`
	QuestionID        int64           `bun:"question_id"`
	QuestionText      string          `bun:"question_text"`
	Points            int             `bun:"points"`
	IsCorrect         bool            `bun:"is_correct"`
	PointsEarned      int             `bun:"points_earned"`
	SelectedOptionIDs []int64         `bun:"selected_option_ids,array"`
	EnteredText       *string         `bun:"entered_text"`
	Options           []domain.Option `bun:"options,type:jsonb"`
}

func newResultRow(r domain.GradedResult) *resultRow {
	row := &resultRow{
		UserID:           r.UserID,
		QuizID:           r.QuizID,
		QuizTitle:        r.QuizTitle,
		CorrectCount:     r.CorrectCount,
		TotalQuestions:   r.TotalQuestions,
		SuccessRate:      r.SuccessRate,
		TotalPoints:      r.TotalPoints,
		MaxPoints:        r.MaxPoints,
		TimeSpentSeconds: int64(r.TimeSpent / time.Second),
		SubmittedAt:      r.SubmittedAt.UTC(),
		Answers:          make([]*answerRow, 0, len(r.Answers)),
	}
	for i, a := range r.Answers {
		opts := a.Options
		if opts == nil {
			opts = []domain.Option{}
		}
		row.Answers = append(row.Answers, &answerRow{
			Position:          i,
			QuestionID:        a.QuestionID,
			QuestionText:      a.QuestionText,
			Points:            a.Points,
			IsCorrect:         a.IsCorrect,
			PointsEarned:      a.PointsEarned,
			SelectedOptionIDs: a.SelectedOptionIDs,
			EnteredText:       a.EnteredText,
			Options:           opts,
		})
	}
	return row
}

func (row *resultRow) toDomain() domain.GradedResult {
	r := domain.GradedResult{
		ID:             row.ID,
		UserID:         row.UserID,
		QuizID:         row.QuizID,
		QuizTitle:      row.QuizTitle,
		CorrectCount:   row.CorrectCount,
		TotalQuestions: row.TotalQuestions,
		SuccessRate:    row.SuccessRate,
		TotalPoints:    row.TotalPoints,
		MaxPoints:      row.MaxPoints,
		TimeSpent:      time.Duration(row.TimeSpentSeconds) * time.Second,
		SubmittedAt:    row.SubmittedAt.UTC(),
	}
	if row.Answers != nil {
		r.Answers = make([]domain.GradedAnswer, 0, len(row.Answers))
		for _, a := range row.Answers {
			r.Answers = append(r.Answers, domain.GradedAnswer{
				QuestionID:        a.QuestionID,
				QuestionText:      a.QuestionText,
				Points:            a.Points,
				IsCorrect:         a.IsCorrect,
				PointsEarned:      a.PointsEarned,
				SelectedOptionIDs: a.SelectedOptionIDs,
				EnteredText:       a.EnteredText,
				Options:           a.Options,
			})
		}
	}
	return r
}
