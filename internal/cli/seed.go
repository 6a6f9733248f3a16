package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/config"
	"quiz-result-service/internal/domain"
	"quiz-result-service/internal/infra/postgres"
)

type seedFile struct {
	Quizzes []domain.Quiz `yaml:"quizzes"`
}

// NewSeedCmd loads quizzes from a YAML file into the Postgres catalog.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <quizzes.yaml>",
		Short: "Create quizzes from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, args[0])
		},
	}
}

func runSeed(ctx context.Context, configPath, seedPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	quizzes, err := loadSeedFile(seedPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db := postgres.OpenDB(cfg.Postgres.URL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	service := app.NewQuizService(postgres.NewQuizRepository(pool, db))
	for _, quiz := range quizzes {
		created, err := service.Create(ctx, quiz)
		if err != nil {
			return fmt.Errorf("seed %q: %w", quiz.Title, err)
		}
		log.Info("quiz seeded", zap.Int64("quiz_id", created.ID), zap.String("title", created.Title))
	}
	return nil
}

// loadSeedFile parses and validates quizzes; ids in the file are ignored.
func loadSeedFile(path string) ([]domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range file.Quizzes {
		quiz := &file.Quizzes[i]
		if err := app.ValidateQuiz(*quiz); err != nil {
			return nil, fmt.Errorf("quiz %d: %w", i+1, err)
		}
		quiz.ID = 0
		for j := range quiz.Questions {
			quiz.Questions[j].ID = 0
			for k := range quiz.Questions[j].Options {
				quiz.Questions[j].Options[k].ID = 0
			}
		}
	}
	return file.Quizzes, nil
}
