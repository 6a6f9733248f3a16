package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/uptrace/bun"

	"quiz-result-service/internal/domain"
)

// QuizRepository is the Postgres catalog: snapshots are read through pgx,
// authoring writes and listings go through bun.
type QuizRepository struct {
	*QuizLoader
	db *bun.DB
}

func NewQuizRepository(pool *pgxpool.Pool, db *bun.DB) *QuizRepository {
	return &QuizRepository{QuizLoader: NewQuizLoader(pool), db: db}
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		qr := &quizRow{
			Title:            quiz.Title,
			Description:      quiz.Description,
			Category:         quiz.Category,
			Difficulty:       quiz.Difficulty,
			TimeLimitSeconds: quiz.TimeLimitSeconds,
		}
		if _, err := tx.NewInsert().Model(qr).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		quiz.ID = qr.ID

		for i := range quiz.Questions {
			question := &quiz.Questions[i]
			row := &questionRow{
				QuizID:         qr.ID,
				Position:       i,
				Text:           question.Text,
				Type:           string(question.Type),
				Points:         question.Points,
				ExpectedAnswer: question.ExpectedAnswer,
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("insert question %d: %w", i+1, err)
			}
			question.ID = row.ID

			if len(question.Options) == 0 {
				continue
			}
			opts := make([]*optionRow, len(question.Options))
			for j, opt := range question.Options {
				opts[j] = &optionRow{QuestionID: row.ID, Position: j, Text: opt.Text, IsCorrect: opt.IsCorrect}
			}
			if _, err := tx.NewInsert().Model(&opts).Exec(ctx); err != nil {
				return fmt.Errorf("insert options of question %d: %w", i+1, err)
			}
			for j := range opts {
				question.Options[j].ID = opts[j].ID
			}
		}
		return nil
	})
}

func (r *QuizRepository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	row := &quizRow{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		Category:         quiz.Category,
		Difficulty:       quiz.Difficulty,
		TimeLimitSeconds: quiz.TimeLimitSeconds,
	}
	res, err := r.db.NewUpdate().
		Model(row).
		Column("title", "description", "category", "difficulty", "time_limit_seconds").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	return requireAffected(res)
}

// DeleteQuiz relies on ON DELETE CASCADE for questions and options.
// The results table has no foreign key to quizzes, so history survives.
func (r *QuizRepository) DeleteQuiz(ctx context.Context, quizID int64) error {
	res, err := r.db.NewDelete().
		Model((*quizRow)(nil)).
		Where("id = ?", quizID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]domain.QuizSummary, error) {
	var rows []quizSummaryRow
	q := r.db.NewSelect().
		TableExpr("quizzes AS q").
		ColumnExpr("q.id, q.title, q.description, q.category, q.difficulty, q.time_limit_seconds").
		ColumnExpr("(SELECT count(*) FROM questions WHERE questions.quiz_id = q.id) AS question_count").
		OrderExpr("q.id ASC")
	if filter.Category != "" {
		q = q.Where("lower(q.category) = lower(?)", filter.Category)
	}
	if filter.Difficulty != "" {
		q = q.Where("lower(q.difficulty) = lower(?)", filter.Difficulty)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	out := make([]domain.QuizSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuizSummary{
			ID:               row.ID,
			Title:            row.Title,
			Description:      row.Description,
			Category:         row.Category,
			Difficulty:       row.Difficulty,
			TimeLimitSeconds: row.TimeLimitSeconds,
			QuestionCount:    row.QuestionCount,
		})
	}
	return out, nil
}
