package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/auth"
	"quiz-result-service/internal/config"
	"quiz-result-service/internal/domain"
	"quiz-result-service/internal/infra/memory"
	"quiz-result-service/internal/infra/postgres"
	"quiz-result-service/internal/infra/rabbitmq"
	redisstore "quiz-result-service/internal/infra/redis"
	transport "quiz-result-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the result service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.close()

	feed := app.NewLeaderboardFeed()
	notifiers := []app.ResultNotifier{
		app.NewLeaderboardNotifier(feed, stores.results, cfg.Results.LeaderboardSize),
	}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		log.Info("publishing result events", zap.String("queue", cfg.RabbitMQ.Queue))
	}

	results := app.NewResultService(stores.quizzes, stores.results, app.NewGrader(), log, notifiers...)
	router := transport.NewRouter(transport.Services{
		Results:  results,
		Quizzes:  app.NewQuizService(stores.quizzes),
		Feed:     feed,
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
	}, transport.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		LeaderboardSize: cfg.Results.LeaderboardSize,
		MaxLeaderboard:  cfg.Results.MaxLeaderboard,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting result service",
			zap.String("addr", server.Addr),
			zap.String("results_backend", cfg.Results.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type stores struct {
	quizzes app.QuizRepository
	results app.ResultStore
	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores picks the quiz catalog (Postgres when configured, otherwise the
// built-in sample quizzes) and the configured result backend.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	s := &stores{}

	if cfg.Postgres.URL != "" {
		db := postgres.OpenDB(cfg.Postgres.URL)
		s.closers = append(s.closers, func() { _ = db.Close() })

		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			s.close()
			return nil, err
		}
		log.Info("migrations applied", zap.Strings("migrations", applied))

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)

		s.quizzes = postgres.NewQuizRepository(pool, db)
		if cfg.Results.Backend == config.BackendPostgres {
			s.results = postgres.NewResultStore(db)
		}
	} else {
		s.quizzes = memory.NewQuizRepository(sampleQuizzes()...)
		log.Warn("no postgres configured, serving built-in sample quizzes")
	}

	switch cfg.Results.Backend {
	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.results = redisstore.NewResultStore(client)
	case config.BackendMemory:
		s.results = memory.NewResultStore()
	}
	return s, nil
}

func sampleQuizzes() []domain.Quiz {
	paris := "Paris"
	return []domain.Quiz{
		{
			ID:               1,
			Title:            "World Capitals",
			Description:      "Warm-up geography questions.",
			Category:         "Geography",
			Difficulty:       "Easy",
			TimeLimitSeconds: 300,
			Questions: []domain.Question{
				{
					ID:     2,
					Text:   "Which city is the capital of Italy?",
					Type:   domain.SingleChoice,
					Points: 1,
					Options: []domain.Option{
						{ID: 3, Text: "Milan"},
						{ID: 4, Text: "Rome", IsCorrect: true},
						{ID: 5, Text: "Naples"},
					},
				},
				{
					ID:     6,
					Text:   "Select the capitals in Scandinavia.",
					Type:   domain.MultipleChoice,
					Points: 2,
					Options: []domain.Option{
						{ID: 7, Text: "Oslo", IsCorrect: true},
						{ID: 8, Text: "Helsinki"},
						{ID: 9, Text: "Stockholm", IsCorrect: true},
					},
				},
				{
					ID:             10,
					Text:           "Name the capital of France.",
					Type:           domain.TextAnswer,
					Points:         2,
					ExpectedAnswer: &paris,
				},
			},
		},
		{
			ID:               11,
			Title:            "Arithmetic",
			Category:         "Math",
			Difficulty:       "Medium",
			TimeLimitSeconds: 120,
			Questions: []domain.Question{
				{
					ID:     12,
					Text:   "2 + 2 = 4",
					Type:   domain.TrueFalse,
					Points: 1,
					Options: []domain.Option{
						{ID: 13, Text: "True", IsCorrect: true},
						{ID: 14, Text: "False"},
					},
				},
			},
		},
	}
}
