package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-result-service/internal/domain"
)

func TestResultStoreCreateAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	text := "Paris"
	result := domain.GradedResult{
		UserID:      3,
		QuizID:      9,
		QuizTitle:   "Capitals",
		TotalPoints: 2,
		MaxPoints:   4,
		TimeSpent:   45 * time.Second,
		SubmittedAt: time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC),
		Answers: []domain.GradedAnswer{
			{QuestionID: 1, IsCorrect: true, PointsEarned: 2, SelectedOptionIDs: []int64{5, 7}, Options: []domain.Option{{ID: 5, Text: "a", IsCorrect: true}}},
			{QuestionID: 2, EnteredText: &text},
		},
	}
	if err := store.Create(ctx, &result); err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.ID != 1 {
		t.Fatalf("expected id 1, got %d", result.ID)
	}
	if !mr.Exists("results:1") {
		t.Fatalf("expected result document key")
	}

	got, ok, err := store.Get(ctx, result.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.TimeSpent != 45*time.Second || !got.SubmittedAt.Equal(result.SubmittedAt) {
		t.Fatalf("header not preserved: %+v", got)
	}
	if len(got.Answers) != 2 || got.Answers[0].SelectedOptionIDs[1] != 7 || *got.Answers[1].EnteredText != "Paris" {
		t.Fatalf("answers not preserved: %+v", got.Answers)
	}
}

func TestResultStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, ok, err := store.Get(context.Background(), 77)
	if err != nil || ok {
		t.Fatalf("expected not found, ok=%v err=%v", ok, err)
	}
}

func TestResultStoreLeaderboardOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed := []domain.GradedResult{
		{UserID: 1, QuizID: 1, TotalPoints: 80, TimeSpent: 30 * time.Second},
		{UserID: 2, QuizID: 1, TotalPoints: 80, TimeSpent: 20 * time.Second},
		{UserID: 3, QuizID: 1, TotalPoints: 90, TimeSpent: 50 * time.Second},
		{UserID: 4, QuizID: 1, TotalPoints: 80, TimeSpent: 20 * time.Second},
		{UserID: 5, QuizID: 2, TotalPoints: 100, TimeSpent: time.Second},
	}
	for i := range seed {
		if err := store.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	ranked, err := store.ListByQuiz(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantUsers := []int64{3, 2, 4, 1}
	if len(ranked) != len(wantUsers) {
		t.Fatalf("expected %d results, got %d", len(wantUsers), len(ranked))
	}
	for i, user := range wantUsers {
		if ranked[i].UserID != user {
			t.Fatalf("rank %d: expected user %d, got %d", i+1, user, ranked[i].UserID)
		}
	}

	top, _ := store.ListByQuiz(ctx, 1, 2)
	if len(top) != 2 || top[0].UserID != 3 || top[1].UserID != 2 {
		t.Fatalf("unexpected top 2 %+v", top)
	}
}

func TestResultStorePointsOutweighLongTimes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed := []domain.GradedResult{
		{UserID: 2, QuizID: 1, TotalPoints: 9, TimeSpent: time.Second},
		{UserID: 1, QuizID: 1, TotalPoints: 10, TimeSpent: 2_000_000_000 * time.Second},
		{UserID: 3, QuizID: 1, TotalPoints: 9, TimeSpent: domain.MaxTimeSpentSeconds * time.Second},
	}
	for i := range seed {
		if err := store.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	ranked, err := store.ListByQuiz(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if ranked[i].UserID != want {
			t.Fatalf("rank %d: expected user %d, got %d (%d points)", i+1, want, ranked[i].UserID, ranked[i].TotalPoints)
		}
	}
}

func TestRankScoreIsExactAtBounds(t *testing.T) {
	slowest := domain.MaxTimeSpentSeconds * time.Second
	top := rankScore(domain.MaxQuizPoints, slowest)
	next := rankScore(domain.MaxQuizPoints-1, 0)
	if !(top < next) {
		t.Fatalf("max points at max time must rank above one point less: %v vs %v", top, next)
	}
	if rankScore(5, slowest) == rankScore(5, slowest-time.Second) {
		t.Fatalf("one second must still separate scores at the bound")
	}
}

func TestResultStoreRecencyOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	seed := []domain.GradedResult{
		{UserID: 1, QuizID: 1, SubmittedAt: base},
		{UserID: 1, QuizID: 2, SubmittedAt: base.Add(2 * time.Hour)},
		{UserID: 2, QuizID: 1, SubmittedAt: base.Add(time.Hour)},
		{UserID: 1, QuizID: 3, SubmittedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		if err := store.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	mine, _ := store.ListByUser(ctx, 1)
	wantMine := []int64{4, 2, 1}
	for i, id := range wantMine {
		if mine[i].ID != id {
			t.Fatalf("position %d: expected result %d, got %d", i, id, mine[i].ID)
		}
		if mine[i].Answers != nil {
			t.Fatalf("list views should not carry answers")
		}
	}

	all, _ := store.ListAll(ctx)
	wantAll := []int64{4, 2, 3, 1}
	for i, id := range wantAll {
		if all[i].ID != id {
			t.Fatalf("position %d: expected result %d, got %d", i, id, all[i].ID)
		}
	}
}

func newTestStore(t *testing.T) (*ResultStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResultStore(client), mr
}
