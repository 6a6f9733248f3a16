package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-result-service/internal/domain"
)

// QuizRepository is an in-memory quiz catalog (useful for tests/demos).
// Every read returns a deep copy so callers can never mutate the catalog.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[int64]domain.Quiz
	nextID  int64
}

func NewQuizRepository(seed ...domain.Quiz) *QuizRepository {
	r := &QuizRepository{quizzes: make(map[int64]domain.Quiz)}
	for _, quiz := range seed {
		r.quizzes[quiz.ID] = cloneQuiz(quiz)
		if quiz.ID > r.nextID {
			r.nextID = quiz.ID
		}
		for _, q := range quiz.Questions {
			if q.ID > r.nextID {
				r.nextID = q.ID
			}
			for _, o := range q.Options {
				if o.ID > r.nextID {
					r.nextID = o.ID
				}
			}
		}
	}
	return r
}

func (r *QuizRepository) LoadQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if quiz, ok := r.quizzes[quizID]; ok {
		return cloneQuiz(quiz), nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// CreateQuiz assigns ids from a single sequence shared by quizzes, questions and options.
func (r *QuizRepository) CreateQuiz(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	quiz.ID = r.nextID
	for i := range quiz.Questions {
		r.nextID++
		quiz.Questions[i].ID = r.nextID
		for j := range quiz.Questions[i].Options {
			r.nextID++
			quiz.Questions[i].Options[j].ID = r.nextID
		}
	}
	r.quizzes[quiz.ID] = cloneQuiz(*quiz)
	return nil
}

func (r *QuizRepository) UpdateQuiz(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.quizzes[quiz.ID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	stored.Title = quiz.Title
	stored.Description = quiz.Description
	stored.Category = quiz.Category
	stored.Difficulty = quiz.Difficulty
	stored.TimeLimitSeconds = quiz.TimeLimitSeconds
	r.quizzes[quiz.ID] = stored
	return nil
}

func (r *QuizRepository) DeleteQuiz(_ context.Context, quizID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.quizzes, quizID)
	return nil
}

func (r *QuizRepository) ListQuizzes(_ context.Context, filter domain.QuizFilter) ([]domain.QuizSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.QuizSummary, 0, len(r.quizzes))
	for _, quiz := range r.quizzes {
		summary := quiz.Summary()
		if filter.Matches(summary) {
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	out := q
	out.Questions = make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		if question.ExpectedAnswer != nil {
			v := *question.ExpectedAnswer
			question.ExpectedAnswer = &v
		}
		question.Options = append([]domain.Option(nil), question.Options...)
		out.Questions[i] = question
	}
	return out
}
