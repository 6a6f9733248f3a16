package app

import (
	"fmt"
	"strings"
	"time"

	"quiz-result-service/internal/domain"
)

// Grader scores submissions against a quiz snapshot. It holds no state
// besides its clock and is safe for concurrent use.
type Grader struct {
	now func() time.Time
}

func NewGrader() *Grader {
	return NewGraderWithClock(time.Now)
}

// NewGraderWithClock is used by tests for deterministic timestamps.
func NewGraderWithClock(now func() time.Time) *Grader {
	return &Grader{now: now}
}

// Grade computes the scored result for one submission. Answers that
// reference a question missing from the snapshot are ignored.
func (g *Grader) Grade(quiz *domain.Quiz, userID int64, answers []domain.SubmittedAnswer, elapsedSeconds int) (domain.GradedResult, error) {
	if quiz == nil {
		return domain.GradedResult{}, domain.ErrQuizNotFound
	}
	if err := ValidateTimeSpent(elapsedSeconds); err != nil {
		return domain.GradedResult{}, err
	}

	byID := make(map[int64]*domain.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		byID[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	result := domain.GradedResult{
		UserID:         userID,
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		TotalQuestions: len(quiz.Questions),
		MaxPoints:      quiz.MaxPoints(),
		TimeSpent:      time.Duration(elapsedSeconds) * time.Second,
		Answers:        make([]domain.GradedAnswer, 0, len(answers)),
	}

	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			continue
		}

		graded := domain.GradedAnswer{
			QuestionID:        question.ID,
			QuestionText:      question.Text,
			Points:            question.Points,
			IsCorrect:         isCorrect(question, answer),
			SelectedOptionIDs: copyIDs(answer.SelectedOptionIDs),
			EnteredText:       copyText(answer.EnteredText),
			Options:           append([]domain.Option(nil), question.Options...),
		}
		if graded.IsCorrect {
			graded.PointsEarned = question.Points
			result.CorrectCount++
			result.TotalPoints += question.Points
		}
		result.Answers = append(result.Answers, graded)
	}

	if result.TotalQuestions > 0 {
		result.SuccessRate = float64(result.CorrectCount) / float64(result.TotalQuestions) * 100
	}
	result.SubmittedAt = g.now().UTC()
	return result, nil
}

// ValidateTimeSpent rejects elapsed times outside [0, domain.MaxTimeSpentSeconds].
func ValidateTimeSpent(seconds int) error {
	if seconds < 0 || seconds > domain.MaxTimeSpentSeconds {
		return fmt.Errorf("%w: time spent must be between 0 and %d seconds", domain.ErrInvalidSubmission, domain.MaxTimeSpentSeconds)
	}
	return nil
}

func isCorrect(question *domain.Question, answer domain.SubmittedAnswer) bool {
	if question.Type == domain.TextAnswer {
		return textMatches(question.ExpectedAnswer, answer.EnteredText)
	}
	return sameOptionSet(question.Options, answer.SelectedOptionIDs)
}

// textMatches requires both sides to be non-blank.
func textMatches(expected, entered *string) bool {
	if expected == nil || entered == nil {
		return false
	}
	want := strings.TrimSpace(*expected)
	got := strings.TrimSpace(*entered)
	if want == "" || got == "" {
		return false
	}
	return strings.EqualFold(want, got)
}

func sameOptionSet(options []domain.Option, selected []int64) bool {
	correct := make(map[int64]struct{})
	for _, opt := range options {
		if opt.IsCorrect {
			correct[opt.ID] = struct{}{}
		}
	}

	chosen := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}

	if len(correct) != len(chosen) {
		return false
	}
	for id := range chosen {
		if _, ok := correct[id]; !ok {
			return false
		}
	}
	return true
}

func copyIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	return append(make([]int64, 0, len(ids)), ids...)
}

func copyText(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
