package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/domain"
	"quiz-result-service/internal/infra/memory"
)

func TestCreateQuizValidatesAndStores(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuizService(memory.NewQuizRepository())

	quiz := testQuiz()
	quiz.ID = 0
	created, err := service.Create(ctx, quiz)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Questions[0].ID == 0 {
		t.Fatalf("expected ids assigned, got %+v", created)
	}

	loaded, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.MaxPoints() != 3 {
		t.Fatalf("expected max points 3, got %d", loaded.MaxPoints())
	}

	list, _ := service.List(ctx, domain.QuizFilter{Category: "trivia"})
	if len(list) != 1 || list[0].QuestionCount != 2 {
		t.Fatalf("unexpected listing %+v", list)
	}
}

func TestUpdateQuizChangesMetadataOnly(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuizService(memory.NewQuizRepository(testQuiz()))

	meta := domain.Quiz{
		Title:            "Harder knowledge",
		Description:      "Second edition",
		Category:         "Trivia",
		Difficulty:       "Hard",
		TimeLimitSeconds: 60,
		Questions:        []domain.Question{{Text: "ignored", Type: domain.TextAnswer, Points: 9}},
	}
	updated, err := service.Update(ctx, 1, meta)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Harder knowledge" || updated.Difficulty != "Hard" || updated.TimeLimitSeconds != 60 {
		t.Fatalf("metadata not applied: %+v", updated)
	}
	if len(updated.Questions) != 2 || updated.MaxPoints() != 3 {
		t.Fatalf("questions must not change, got %+v", updated.Questions)
	}

	if _, err := service.Update(ctx, 42, meta); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	meta.TimeLimitSeconds = 0
	if _, err := service.Update(ctx, 1, meta); !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz, got %v", err)
	}
}

func TestDeleteQuizKeepsStoredResults(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizRepository(testQuiz())
	store := memory.NewResultStore()
	results := app.NewResultService(quizzes, store, app.NewGrader(), nil)
	service := app.NewQuizService(quizzes)

	graded, err := results.Submit(ctx, 3, domain.Submission{QuizID: 1, Answers: []domain.SubmittedAnswer{
		{QuestionID: 10, SelectedOptionIDs: []int64{101}},
	}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := service.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.Get(ctx, 1); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz to be gone, got %v", err)
	}
	if err := service.Delete(ctx, 1); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound on second delete, got %v", err)
	}

	kept, found, err := results.Get(ctx, graded.ID)
	if err != nil || !found {
		t.Fatalf("result lost with its quiz: found=%v err=%v", found, err)
	}
	if kept.QuizTitle != "General knowledge" || kept.TotalPoints != 2 {
		t.Fatalf("unexpected kept result %+v", kept)
	}
}

func TestValidateQuizRejects(t *testing.T) {
	cases := map[string]func(*domain.Quiz){
		"missing title":    func(q *domain.Quiz) { q.Title = " " },
		"long title":       func(q *domain.Quiz) { q.Title = strings.Repeat("x", 201) },
		"bad difficulty":   func(q *domain.Quiz) { q.Difficulty = "Extreme" },
		"zero time limit":  func(q *domain.Quiz) { q.TimeLimitSeconds = 0 },
		"missing category": func(q *domain.Quiz) { q.Category = "" },
		"bad type":         func(q *domain.Quiz) { q.Questions[0].Type = "Essay" },
		"zero points":      func(q *domain.Quiz) { q.Questions[0].Points = 0 },
		"empty option":     func(q *domain.Quiz) { q.Questions[0].Options[0].Text = "" },
		"too many points":  func(q *domain.Quiz) { q.Questions[0].Points = domain.MaxQuizPoints },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			quiz := testQuiz()
			mutate(&quiz)
			if err := app.ValidateQuiz(quiz); !errors.Is(err, domain.ErrInvalidQuiz) {
				t.Fatalf("expected ErrInvalidQuiz, got %v", err)
			}
		})
	}
	if err := app.ValidateQuiz(testQuiz()); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}
}

func TestWithoutAnswerKey(t *testing.T) {
	quiz := testQuiz()
	public := quiz.WithoutAnswerKey()
	if public.Questions[0].Options[1].IsCorrect || public.Questions[1].ExpectedAnswer != nil {
		t.Fatalf("answer key leaked: %+v", public.Questions)
	}
	if !quiz.Questions[0].Options[1].IsCorrect {
		t.Fatalf("original quiz must not be modified")
	}
}
