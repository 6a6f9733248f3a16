package app

import (
	"sort"
	"time"

	"quiz-result-service/internal/domain"
)

// DefaultLeaderboardSize is used when no count is requested.
const DefaultLeaderboardSize = 10

// SortByScore orders results the way leaderboards rank them: points desc,
// then faster completion, then earlier id.
func SortByScore(results []domain.GradedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return RanksBefore(results[i], results[j])
	})
}

// RanksBefore reports whether a places above b on a leaderboard.
func RanksBefore(a, b domain.GradedResult) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	if a.TimeSpent != b.TimeSpent {
		return a.TimeSpent < b.TimeSpent
	}
	return a.ID < b.ID
}

// SortByRecency orders results most recent first.
func SortByRecency(results []domain.GradedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].SubmittedAt.Equal(results[j].SubmittedAt) {
			return results[i].SubmittedAt.After(results[j].SubmittedAt)
		}
		return results[i].ID > results[j].ID
	})
}

// BuildLeaderboard numbers already-ranked results.
func BuildLeaderboard(quizID int64, ranked []domain.GradedResult, now time.Time) domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, r := range ranked {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:             i + 1,
			ResultID:         r.ID,
			UserID:           r.UserID,
			TotalPoints:      r.TotalPoints,
			MaxPoints:        r.MaxPoints,
			CorrectCount:     r.CorrectCount,
			SuccessRate:      r.SuccessRate,
			TimeSpentSeconds: int64(r.TimeSpent / time.Second),
			SubmittedAt:      r.SubmittedAt,
		})
	}
	return domain.Leaderboard{
		QuizID:    quizID,
		Entries:   entries,
		UpdatedAt: now,
	}
}
