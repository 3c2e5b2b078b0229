package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"agriskills-quiz-service/internal/app"
	"agriskills-quiz-service/internal/config"
	"agriskills-quiz-service/internal/domain"
	"agriskills-quiz-service/internal/infra/memory"
	pgstore "agriskills-quiz-service/internal/infra/postgres"
	redisquiz "agriskills-quiz-service/internal/infra/redis"
	transport "agriskills-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz assessment server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	staticLoader := memory.NewStaticQuizLoader(sampleQuizzes())

	var (
		loader   memory.QuizLoader   = staticLoader
		resolver app.ChapterResolver = staticLoader
		attempts app.AttemptStore    = memory.NewAttemptStore()
	)
	if pool != nil {
		pgLoader := pgstore.NewQuizLoader(pool)
		loader = pgLoader
		resolver = pgLoader
		attempts = pgstore.NewAttemptStore(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisquiz.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	grace := config.Duration(cfg.Attempt.Grace, app.DefaultGracePeriod)
	attemptService := app.NewAttemptService(quizRepo, attempts, grace)
	statusService := app.NewStatusService(resolver, attempts)
	handler := transport.NewHandler(attemptService, statusService)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz assessment service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes backs demo mode without Postgres and the seed command.
func sampleQuizzes() map[string]domain.Quiz {
	tenMinutes := 10
	return map[string]domain.Quiz{
		"quiz-soil-basics": {
			ID:               "quiz-soil-basics",
			ChapterID:        "chapter-soil-1",
			Title:            "Soil Basics",
			PassingScore:     70,
			TimeLimitMinutes: &tenMinutes,
			IsActive:         true,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Text:   "Which soil type retains the most water?",
					Type:   domain.QuestionMultipleChoice,
					Points: 2,
					Answers: []domain.Answer{
						{ID: "a1", Text: "Sandy"},
						{ID: "a2", Text: "Clay", IsCorrect: true},
						{ID: "a3", Text: "Loam"},
					},
				},
				{
					ID:     "q2",
					Text:   "Composting improves soil structure.",
					Type:   domain.QuestionTrueFalse,
					Points: 1,
					Answers: []domain.Answer{
						{ID: "a4", Text: "True", IsCorrect: true},
						{ID: "a5", Text: "False"},
					},
				},
				{
					ID:     "q3",
					Text:   "Name the process by which plants make their food.",
					Type:   domain.QuestionFillInBlank,
					Points: 2,
					Answers: []domain.Answer{
						{ID: "a6", Text: "photosynthesis"},
						{ID: "a7", Text: "photo synthesis"},
					},
				},
			},
		},
	}
}
