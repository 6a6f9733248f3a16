package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/domain"
	"quiz-result-service/internal/infra/postgres"
	infraredis "quiz-result-service/internal/infra/redis"
)

func TestResultsEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisAddr, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenDB(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalog := postgres.NewQuizRepository(pool, db)
	quizzes := app.NewQuizService(catalog)
	quiz, err := quizzes.Create(ctx, sampleQuiz())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	t.Run("catalog", func(t *testing.T) {
		loaded, err := catalog.LoadQuiz(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("load quiz: %v", err)
		}
		if len(loaded.Questions) != 3 || loaded.MaxPoints() != 6 {
			t.Fatalf("unexpected snapshot %+v", loaded)
		}
		if loaded.Questions[1].Options[2].ID != quiz.Questions[1].Options[2].ID || !loaded.Questions[1].Options[2].IsCorrect {
			t.Fatalf("option order or key lost: %+v", loaded.Questions[1].Options)
		}
		if _, err := catalog.LoadQuiz(ctx, quiz.ID+1000); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected ErrQuizNotFound, got %v", err)
		}
		listed, err := catalog.ListQuizzes(ctx, domain.QuizFilter{Category: "geography"})
		if err != nil {
			t.Fatalf("list quizzes: %v", err)
		}
		if len(listed) != 1 || listed[0].QuestionCount != 3 {
			t.Fatalf("unexpected listing %+v", listed)
		}
	})

	redisClient, err := infraredis.NewClient(ctx, redisAddr, "", 0)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	stores := map[string]app.ResultStore{
		"postgres": postgres.NewResultStore(db),
		"redis":    infraredis.NewResultStore(redisClient),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			service := app.NewResultService(catalog, store, app.NewGrader(), nil)
			assertResultFlow(t, ctx, service, quiz)
		})
	}

	t.Run("update and delete", func(t *testing.T) {
		meta := sampleQuiz()
		meta.Title = "Capitals, revised"
		meta.Difficulty = "Hard"
		updated, err := quizzes.Update(ctx, quiz.ID, meta)
		if err != nil {
			t.Fatalf("update quiz: %v", err)
		}
		if updated.Title != "Capitals, revised" || updated.Difficulty != "Hard" || len(updated.Questions) != 3 {
			t.Fatalf("unexpected updated quiz %+v", updated)
		}
		if _, err := quizzes.Update(ctx, quiz.ID+1000, meta); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected ErrQuizNotFound, got %v", err)
		}

		if err := quizzes.Delete(ctx, quiz.ID); err != nil {
			t.Fatalf("delete quiz: %v", err)
		}
		if _, err := catalog.LoadQuiz(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected deleted quiz to be gone, got %v", err)
		}
		if err := quizzes.Delete(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected ErrQuizNotFound, got %v", err)
		}
		kept, err := stores["postgres"].ListByQuiz(ctx, quiz.ID, 10)
		if err != nil || len(kept) == 0 {
			t.Fatalf("results must survive quiz deletion: %d kept, err %v", len(kept), err)
		}
	})
}

func assertResultFlow(t *testing.T, ctx context.Context, service *app.ResultService, quiz domain.Quiz) {
	t.Helper()

	submissions := []struct {
		userID  int64
		seconds int
		text    string
	}{
		{userID: 3, seconds: 30, text: "Lyon"},
		{userID: 1, seconds: 50, text: " paris "},
		{userID: 2, seconds: 20, text: "Lyon"},
	}

	var first domain.GradedResult
	for i, s := range submissions {
		result, err := service.Submit(ctx, s.userID, answersFor(quiz, s.seconds, s.text))
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if i == 1 {
			first = result
		}
	}

	stored, found, err := service.Get(ctx, first.ID)
	if err != nil || !found {
		t.Fatalf("get result: found=%v err=%v", found, err)
	}
	if stored.TotalPoints != 6 || stored.MaxPoints != 6 || stored.CorrectCount != 3 || stored.TimeSpent != 50*time.Second {
		t.Fatalf("unexpected stored result %+v", stored)
	}
	if len(stored.Answers) != 3 || len(stored.Answers[1].SelectedOptionIDs) != 2 || len(stored.Answers[1].Options) != 3 {
		t.Fatalf("answer detail not persisted: %+v", stored.Answers)
	}
	if stored.Answers[2].EnteredText == nil || *stored.Answers[2].EnteredText != " paris " {
		t.Fatalf("entered text not persisted: %+v", stored.Answers[2])
	}

	top, err := service.TopResults(ctx, quiz.ID, 10)
	if err != nil {
		t.Fatalf("top results: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 ranked results, got %d", len(top))
	}
	for i, want := range []int64{1, 2, 3} {
		if top[i].UserID != want {
			t.Fatalf("rank %d: expected user %d, got %d", i+1, want, top[i].UserID)
		}
	}

	mine, err := service.UserResults(ctx, 2)
	if err != nil {
		t.Fatalf("user results: %v", err)
	}
	if len(mine) != 1 || mine[0].TotalPoints != 5 || mine[0].Answers != nil {
		t.Fatalf("unexpected user results %+v", mine)
	}
}

func answersFor(quiz domain.Quiz, seconds int, text string) domain.Submission {
	single := quiz.Questions[0]
	multi := quiz.Questions[1]
	return domain.Submission{
		QuizID:           quiz.ID,
		TimeSpentSeconds: seconds,
		Answers: []domain.SubmittedAnswer{
			{QuestionID: single.ID, SelectedOptionIDs: []int64{single.Options[0].ID}},
			{QuestionID: multi.ID, SelectedOptionIDs: []int64{multi.Options[2].ID, multi.Options[1].ID}},
			{QuestionID: quiz.Questions[2].ID, EnteredText: &text},
		},
	}
}

func sampleQuiz() domain.Quiz {
	paris := "Paris"
	return domain.Quiz{
		Title:            "European Capitals",
		Category:         "Geography",
		Difficulty:       "Medium",
		TimeLimitSeconds: 600,
		Questions: []domain.Question{
			{
				Text:   "Capital of Spain?",
				Type:   domain.SingleChoice,
				Points: 2,
				Options: []domain.Option{
					{Text: "Madrid", IsCorrect: true},
					{Text: "Barcelona"},
				},
			},
			{
				Text:   "Which are Nordic capitals?",
				Type:   domain.MultipleChoice,
				Points: 3,
				Options: []domain.Option{
					{Text: "Riga"},
					{Text: "Oslo", IsCorrect: true},
					{Text: "Copenhagen", IsCorrect: true},
				},
			},
			{
				Text:           "Capital of France?",
				Type:           domain.TextAnswer,
				Points:         1,
				ExpectedAnswer: &paris,
			},
		},
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	addr := fmt.Sprintf("%s:%s", host, port.Port())
	return addr, func() {
		_ = container.Terminate(ctx)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

