package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidSubmission is returned for malformed submissions (e.g. time spent out of range).
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrInvalidCount is returned when a leaderboard size is not positive.
	ErrInvalidCount = errors.New("count must be a positive integer")
	// ErrInvalidQuiz is returned when a quiz definition fails authoring rules.
	ErrInvalidQuiz = errors.New("invalid quiz")
)
