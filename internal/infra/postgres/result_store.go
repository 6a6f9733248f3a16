package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-result-service/internal/domain"
)

// ResultStore persists graded results and their answers with bun.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Create writes the result and its answers in one transaction.
func (s *ResultStore) Create(ctx context.Context, result *domain.GradedResult) error {
	row := newResultRow(*result)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
		if len(row.Answers) == 0 {
			return nil
		}
		for _, a := range row.Answers {
			a.ResultID = row.ID
		}
		if _, err := tx.NewInsert().Model(&row.Answers).Exec(ctx); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	result.ID = row.ID
	return nil
}

func (s *ResultStore) Get(ctx context.Context, id int64) (domain.GradedResult, bool, error) {
	row := new(resultRow)
	err := s.db.NewSelect().
		Model(row).
		Relation("Answers", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("r.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GradedResult{}, false, nil
	}
	if err != nil {
		return domain.GradedResult{}, false, fmt.Errorf("get result %d: %w", id, err)
	}
	if row.Answers == nil {
		row.Answers = []*answerRow{}
	}
	return row.toDomain(), true, nil
}

func (s *ResultStore) ListByUser(ctx context.Context, userID int64) ([]domain.GradedResult, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("r.user_id = ?", userID).Order("r.submitted_at DESC", "r.id DESC")
	})
}

func (s *ResultStore) ListByQuiz(ctx context.Context, quizID int64, limit int) ([]domain.GradedResult, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("r.quiz_id = ?", quizID).Order("r.total_points DESC", "r.time_spent_seconds ASC", "r.id ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	})
}

func (s *ResultStore) ListAll(ctx context.Context) ([]domain.GradedResult, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("r.submitted_at DESC", "r.id DESC")
	})
}

func (s *ResultStore) list(ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.GradedResult, error) {
	var rows []resultRow
	if err := apply(s.db.NewSelect().Model(&rows)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.GradedResult, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
