package app

import (
	"context"
	"testing"
	"time"

	"agriskills-quiz-service/internal/domain"
	"agriskills-quiz-service/internal/infra/memory"
)

func TestStatusForAggregatesBestScore(t *testing.T) {
	ctx := context.Background()
	quiz := testQuiz()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{quiz.ID: quiz})
	store := memory.NewAttemptStore()
	repo := memory.NewQuizRepository(loader, time.Minute)
	clock := newTestClock()
	attempts := NewAttemptService(repo, store, 0).WithClock(clock.Now)
	status := NewStatusService(loader, store)

	// Failing run first (wrong answer, 0%), then a passing run (100%).
	first, _, err := attempts.Start(ctx, "u1", quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := attempts.Submit(ctx, first.ID, map[string]domain.Response{
		"q1": respond("q1", "a2"),
	}, false); err != nil {
		t.Fatalf("submit failing run: %v", err)
	}

	clock.Advance(time.Hour)
	second, _, err := attempts.Start(ctx, "u1", quiz.ID)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if _, err := attempts.Submit(ctx, second.ID, map[string]domain.Response{
		"q1": respond("q1", "a1"),
		"q2": respondText("q2", "loam"),
	}, false); err != nil {
		t.Fatalf("submit passing run: %v", err)
	}

	statuses, err := status.StatusFor(ctx, "u1", []string{"chapter-1", "chapter-without-quiz"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected only chapters with quizzes, got %d entries", len(statuses))
	}
	chapter := statuses["chapter-1"]
	if !chapter.Passed || chapter.BestScore != 100 {
		t.Fatalf("expected passed with best score 100, got %+v", chapter)
	}
	if !chapter.AttemptDate.Equal(clock.Now()) {
		t.Fatalf("expected attempt date of best run, got %v", chapter.AttemptDate)
	}
}

func TestStatusForFailedAttemptsOnly(t *testing.T) {
	ctx := context.Background()
	quiz := testQuiz()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{quiz.ID: quiz})
	store := memory.NewAttemptStore()
	attempts := NewAttemptService(memory.NewQuizRepository(loader, time.Minute), store, 0).WithClock(newTestClock().Now)
	status := NewStatusService(loader, store)

	attempt, _, err := attempts.Start(ctx, "u1", quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := attempts.Submit(ctx, attempt.ID, nil, true); err != nil {
		t.Fatalf("submit: %v", err)
	}

	statuses, err := status.StatusFor(ctx, "u1", []string{"chapter-1"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	chapter, ok := statuses["chapter-1"]
	if !ok {
		t.Fatalf("expected an entry for a chapter with recorded attempts")
	}
	if chapter.Passed || chapter.BestScore != 0 {
		t.Fatalf("expected failed status with best score 0, got %+v", chapter)
	}
}

func TestStatusForIgnoresInProgressAttempts(t *testing.T) {
	ctx := context.Background()
	quiz := testQuiz()
	loader := memory.NewStaticQuizLoader(map[string]domain.Quiz{quiz.ID: quiz})
	store := memory.NewAttemptStore()
	attempts := NewAttemptService(memory.NewQuizRepository(loader, time.Minute), store, 0).WithClock(newTestClock().Now)
	status := NewStatusService(loader, store)

	if _, _, err := attempts.Start(ctx, "u1", quiz.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	statuses, err := status.StatusFor(ctx, "u1", []string{"chapter-1"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != 0 {
		t.Fatalf("unresolved attempts must not count toward status, got %+v", statuses)
	}
}
