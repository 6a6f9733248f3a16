package memory

import (
	"context"
	"sync"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultStore.
type ResultStore struct {
	mu      sync.RWMutex
	results map[int64]domain.GradedResult
	nextID  int64
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[int64]domain.GradedResult),
	}
}

func (s *ResultStore) Create(_ context.Context, result *domain.GradedResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	result.ID = s.nextID
	s.results[result.ID] = cloneResult(*result)
	return nil
}

func (s *ResultStore) Get(_ context.Context, id int64) (domain.GradedResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return domain.GradedResult{}, false, nil
	}
	return cloneResult(result), true, nil
}

func (s *ResultStore) ListByUser(_ context.Context, userID int64) ([]domain.GradedResult, error) {
	out := s.filter(func(r domain.GradedResult) bool { return r.UserID == userID })
	app.SortByRecency(out)
	return out, nil
}

func (s *ResultStore) ListByQuiz(_ context.Context, quizID int64, limit int) ([]domain.GradedResult, error) {
	out := s.filter(func(r domain.GradedResult) bool { return r.QuizID == quizID })
	app.SortByScore(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ResultStore) ListAll(_ context.Context) ([]domain.GradedResult, error) {
	out := s.filter(func(domain.GradedResult) bool { return true })
	app.SortByRecency(out)
	return out, nil
}

func (s *ResultStore) filter(keep func(domain.GradedResult) bool) []domain.GradedResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GradedResult, 0)
	for _, r := range s.results {
		if keep(r) {
			out = append(out, r.Summary())
		}
	}
	return out
}

func cloneResult(r domain.GradedResult) domain.GradedResult {
	if r.Answers == nil {
		return r
	}
	answers := make([]domain.GradedAnswer, len(r.Answers))
	for i, a := range r.Answers {
		if a.SelectedOptionIDs != nil {
			a.SelectedOptionIDs = append([]int64(nil), a.SelectedOptionIDs...)
		}
		if a.EnteredText != nil {
			v := *a.EnteredText
			a.EnteredText = &v
		}
		a.Options = append([]domain.Option(nil), a.Options...)
		answers[i] = a
	}
	r.Answers = answers
	return r
}
