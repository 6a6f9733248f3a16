package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-result-service/internal/domain"
)

// QuizLoader reads fully materialized quiz snapshots from Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

const (
	selectQuiz = `SELECT id, title, description, category, difficulty, time_limit_seconds
FROM quizzes WHERE id = $1`

	selectQuestions = `SELECT q.id, q.text, q.type, q.points, q.expected_answer, o.id, o.text, o.is_correct
FROM questions q
LEFT JOIN options o ON o.question_id = q.id
WHERE q.quiz_id = $1
ORDER BY q.position, q.id, o.position, o.id`
)

// LoadQuiz reads the quiz and its answer key inside one read-only
// repeatable-read transaction so the snapshot is consistent.
func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	var quiz domain.Quiz
	err = tx.QueryRow(ctx, selectQuiz, quizID).Scan(
		&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Category, &quiz.Difficulty, &quiz.TimeLimitSeconds,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := tx.Query(ctx, selectQuestions, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = []domain.Question{}
	for rows.Next() {
		var (
			q          domain.Question
			qType      string
			optID      *int64
			optText    *string
			optCorrect *bool
		)
		if err := rows.Scan(&q.ID, &q.Text, &qType, &q.Points, &q.ExpectedAnswer, &optID, &optText, &optCorrect); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qType)

		last := len(quiz.Questions) - 1
		if last < 0 || quiz.Questions[last].ID != q.ID {
			q.Options = []domain.Option{}
			quiz.Questions = append(quiz.Questions, q)
			last++
		}
		if optID != nil {
			opt := domain.Option{ID: *optID}
			if optText != nil {
				opt.Text = *optText
			}
			if optCorrect != nil {
				opt.IsCorrect = *optCorrect
			}
			quiz.Questions[last].Options = append(quiz.Questions[last].Options, opt)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
