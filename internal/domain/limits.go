package domain

import "math"

const (
	// MaxTimeSpentSeconds bounds a submission's elapsed time so it always fits
	// a time.Duration and a 32-bit column.
	MaxTimeSpentSeconds = math.MaxInt32
	// MaxQuizPoints bounds the total points of a quiz. Together with
	// MaxTimeSpentSeconds it keeps composite rank scores exact in a float64.
	MaxQuizPoints = 1_000_000
)
