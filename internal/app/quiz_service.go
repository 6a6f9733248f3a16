package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quiz-result-service/internal/domain"
)

// QuizRepository is the authoring side of the catalog.
type QuizRepository interface {
	Catalog
	// CreateQuiz stores the quiz and fills in the ids of the quiz, its questions and options.
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]domain.QuizSummary, error)
	// UpdateQuiz overwrites the quiz metadata; questions are left untouched.
	UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error
	// DeleteQuiz removes the quiz with its questions. Stored results are kept.
	DeleteQuiz(ctx context.Context, quizID int64) error
}

// QuizService contains the quiz catalog use cases.
type QuizService struct {
	quizzes QuizRepository
}

func NewQuizService(quizzes QuizRepository) *QuizService {
	return &QuizService{quizzes: quizzes}
}

// Create validates and stores a new quiz.
func (s *QuizService) Create(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if err := ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.CreateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// Get returns the full quiz including its answer key.
func (s *QuizService) Get(ctx context.Context, quizID int64) (domain.Quiz, error) {
	return s.quizzes.LoadQuiz(ctx, quizID)
}

// Update replaces the metadata of an existing quiz and returns the stored quiz.
func (s *QuizService) Update(ctx context.Context, quizID int64, meta domain.Quiz) (domain.Quiz, error) {
	meta.ID = quizID
	meta.Questions = nil
	if err := ValidateQuiz(meta); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.UpdateQuiz(ctx, &meta); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	return s.quizzes.LoadQuiz(ctx, quizID)
}

func (s *QuizService) Delete(ctx context.Context, quizID int64) error {
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

func (s *QuizService) List(ctx context.Context, filter domain.QuizFilter) ([]domain.QuizSummary, error) {
	return s.quizzes.ListQuizzes(ctx, filter)
}

var difficulties = map[string]struct{}{"Easy": {}, "Medium": {}, "Hard": {}}

// ValidateQuiz enforces the authoring rules. The grader itself tolerates
// malformed keys, so these only guard the write path.
func ValidateQuiz(quiz domain.Quiz) error {
	switch {
	case strings.TrimSpace(quiz.Title) == "":
		return invalidQuiz("title is required")
	case len(quiz.Title) > 200:
		return invalidQuiz("title cannot exceed 200 characters")
	case len(quiz.Description) > 1000:
		return invalidQuiz("description cannot exceed 1000 characters")
	case strings.TrimSpace(quiz.Category) == "":
		return invalidQuiz("category is required")
	case len(quiz.Category) > 100:
		return invalidQuiz("category cannot exceed 100 characters")
	case quiz.TimeLimitSeconds <= 0:
		return invalidQuiz("time limit must be greater than 0")
	}
	if _, ok := difficulties[quiz.Difficulty]; !ok {
		return invalidQuiz("difficulty must be Easy, Medium, or Hard")
	}

	total := 0
	for i, q := range quiz.Questions {
		switch {
		case strings.TrimSpace(q.Text) == "":
			return invalidQuiz(fmt.Sprintf("question %d: text is required", i+1))
		case len(q.Text) > 1000:
			return invalidQuiz(fmt.Sprintf("question %d: text cannot exceed 1000 characters", i+1))
		case !q.Type.Valid():
			return invalidQuiz(fmt.Sprintf("question %d: invalid question type %q", i+1, q.Type))
		case q.Points <= 0:
			return invalidQuiz(fmt.Sprintf("question %d: points must be greater than 0", i+1))
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt.Text) == "" || len(opt.Text) > 500 {
				return invalidQuiz(fmt.Sprintf("question %d option %d: text must be 1-500 characters", i+1, j+1))
			}
		}
		total += q.Points
		if total > domain.MaxQuizPoints {
			return invalidQuiz(fmt.Sprintf("total points cannot exceed %d", domain.MaxQuizPoints))
		}
	}
	return nil
}

func invalidQuiz(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidQuiz, msg)
}
