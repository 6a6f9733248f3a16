package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quiz-result-service/internal/domain"
)

// Catalog supplies quiz snapshots by id. Missing quizzes yield domain.ErrQuizNotFound.
type Catalog interface {
	LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// ResultStore persists graded results. Create assigns the id, and a created
// result must be visible to every subsequent read.
type ResultStore interface {
	Create(ctx context.Context, result *domain.GradedResult) error
	Get(ctx context.Context, id int64) (domain.GradedResult, bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.GradedResult, error)
	// ListByQuiz returns results ranked for the leaderboard; limit <= 0 means all.
	ListByQuiz(ctx context.Context, quizID int64, limit int) ([]domain.GradedResult, error)
	ListAll(ctx context.Context) ([]domain.GradedResult, error)
}

// ResultNotifier is told about every result after it has been stored.
type ResultNotifier interface {
	NotifyResult(ctx context.Context, result domain.GradedResult) error
}

// ResultService contains the submission and result query use cases.
type ResultService struct {
	catalog   Catalog
	results   ResultStore
	grader    *Grader
	log       *zap.Logger
	notifiers []ResultNotifier
	now       func() time.Time
}

func NewResultService(catalog Catalog, results ResultStore, grader *Grader, log *zap.Logger, notifiers ...ResultNotifier) *ResultService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResultService{
		catalog:   catalog,
		results:   results,
		grader:    grader,
		log:       log,
		notifiers: notifiers,
		now:       time.Now,
	}
}

// Submit grades a submission against a fresh snapshot and stores the result.
func (s *ResultService) Submit(ctx context.Context, userID int64, sub domain.Submission) (domain.GradedResult, error) {
	if err := ValidateTimeSpent(sub.TimeSpentSeconds); err != nil {
		return domain.GradedResult{}, err
	}

	quiz, err := s.catalog.LoadQuiz(ctx, sub.QuizID)
	if err != nil {
		return domain.GradedResult{}, err
	}

	result, err := s.grader.Grade(&quiz, userID, sub.Answers, sub.TimeSpentSeconds)
	if err != nil {
		return domain.GradedResult{}, err
	}

	if err := s.results.Create(ctx, &result); err != nil {
		return domain.GradedResult{}, fmt.Errorf("store result: %w", err)
	}

	s.log.Info("result submitted",
		zap.Int64("result_id", result.ID),
		zap.Int64("user_id", userID),
		zap.Int64("quiz_id", result.QuizID),
		zap.Int("points", result.TotalPoints),
		zap.Int("max_points", result.MaxPoints),
	)

	for _, n := range s.notifiers {
		if err := n.NotifyResult(ctx, result); err != nil {
			s.log.Warn("result notification failed", zap.Int64("result_id", result.ID), zap.Error(err))
		}
	}
	return result, nil
}

// Get returns the full result; found is false when no such result exists.
func (s *ResultService) Get(ctx context.Context, id int64) (domain.GradedResult, bool, error) {
	return s.results.Get(ctx, id)
}

func (s *ResultService) UserResults(ctx context.Context, userID int64) ([]domain.GradedResult, error) {
	return s.results.ListByUser(ctx, userID)
}

func (s *ResultService) QuizResults(ctx context.Context, quizID int64) ([]domain.GradedResult, error) {
	return s.results.ListByQuiz(ctx, quizID, 0)
}

// TopResults is the leaderboard query. count must be positive.
func (s *ResultService) TopResults(ctx context.Context, quizID int64, count int) ([]domain.GradedResult, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidCount
	}
	return s.results.ListByQuiz(ctx, quizID, count)
}

func (s *ResultService) AllResults(ctx context.Context) ([]domain.GradedResult, error) {
	return s.results.ListAll(ctx)
}

// Leaderboard is TopResults with ranks attached.
func (s *ResultService) Leaderboard(ctx context.Context, quizID int64, count int) (domain.Leaderboard, error) {
	top, err := s.TopResults(ctx, quizID, count)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return BuildLeaderboard(quizID, top, s.now().UTC()), nil
}
