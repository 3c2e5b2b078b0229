package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"agriskills-quiz-service/internal/domain"
)

func newAttempt(id, userID, quizID string) domain.Attempt {
	return domain.Attempt{
		ID:        id,
		UserID:    userID,
		QuizID:    quizID,
		StartedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Snapshot: domain.QuizSnapshot{
			QuizID:       quizID,
			PassingScore: 50,
			Questions: []domain.Question{
				{ID: "q1", Type: domain.QuestionTrueFalse, Points: 1, Answers: []domain.Answer{
					{ID: "a1", Text: "True", IsCorrect: true},
					{ID: "a2", Text: "False"},
				}},
			},
		},
		Responses: map[string]domain.Response{},
	}
}

func closeResult(score int, passed bool) domain.AttemptResult {
	return domain.AttemptResult{
		SubmittedAt: time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC),
		Responses:   map[string]domain.Response{},
		ScoreResult: domain.ScoreResult{
			PointsEarned:   score / 100,
			PointsPossible: 1,
			Percentage:     score,
			Passed:         passed,
		},
	}
}

func TestCreateRefusesSecondLiveAttempt(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	if err := store.Create(ctx, newAttempt("att-1", "u1", "quiz-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.Create(ctx, newAttempt("att-2", "u1", "quiz-1"))
	if !errors.Is(err, domain.ErrAttemptConflict) {
		t.Fatalf("expected ErrAttemptConflict, got %v", err)
	}

	// Other users and other quizzes are unaffected.
	if err := store.Create(ctx, newAttempt("att-3", "u2", "quiz-1")); err != nil {
		t.Fatalf("create for other user: %v", err)
	}
	if err := store.Create(ctx, newAttempt("att-4", "u1", "quiz-2")); err != nil {
		t.Fatalf("create for other quiz: %v", err)
	}
}

func TestCreateAllowedAfterClose(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	if err := store.Create(ctx, newAttempt("att-1", "u1", "quiz-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Close(ctx, "att-1", closeResult(0, false)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Create(ctx, newAttempt("att-2", "u1", "quiz-1")); err != nil {
		t.Fatalf("expected new attempt after close, got %v", err)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	if err := store.Create(ctx, newAttempt("att-1", "u1", "quiz-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	closed, err := store.Close(ctx, "att-1", closeResult(100, true))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.SubmittedAt == nil || closed.Score == nil || *closed.Score != 100 {
		t.Fatalf("expected terminal state with score, got %+v", closed)
	}

	if _, err := store.Close(ctx, "att-1", closeResult(0, false)); !errors.Is(err, domain.ErrAttemptAlreadySubmitted) {
		t.Fatalf("expected ErrAttemptAlreadySubmitted, got %v", err)
	}
	stored, _ := store.Get(ctx, "att-1")
	if *stored.Score != 100 {
		t.Fatalf("losing close must not overwrite score, got %d", *stored.Score)
	}

	if _, err := store.Close(ctx, "missing", closeResult(0, false)); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestFindInProgressSkipsClosed(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	if err := store.Create(ctx, newAttempt("att-1", "u1", "quiz-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok, _ := store.FindInProgress(ctx, "u1", "quiz-1"); !ok {
		t.Fatalf("expected live attempt")
	}

	if _, err := store.Close(ctx, "att-1", closeResult(50, true)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok, _ := store.FindInProgress(ctx, "u1", "quiz-1"); ok {
		t.Fatalf("closed attempt must not be returned as in-progress")
	}
}

func TestListSubmittedFilters(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	_ = store.Create(ctx, newAttempt("att-1", "u1", "quiz-1"))
	_, _ = store.Close(ctx, "att-1", closeResult(40, false))
	_ = store.Create(ctx, newAttempt("att-2", "u1", "quiz-1"))
	_, _ = store.Close(ctx, "att-2", closeResult(80, true))
	_ = store.Create(ctx, newAttempt("att-3", "u1", "quiz-2")) // still open
	_ = store.Create(ctx, newAttempt("att-4", "u2", "quiz-1"))
	_, _ = store.Close(ctx, "att-4", closeResult(100, true))

	attempts, err := store.ListSubmitted(ctx, "u1", []string{"quiz-1", "quiz-2"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected the two closed quiz-1 attempts, got %d", len(attempts))
	}
	for _, a := range attempts {
		if a.UserID != "u1" || a.QuizID != "quiz-1" || a.InProgress() {
			t.Fatalf("unexpected attempt in listing: %+v", a)
		}
	}
}

func TestStoredAttemptIsIsolatedFromCallers(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	original := newAttempt("att-1", "u1", "quiz-1")
	if err := store.Create(ctx, original); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := store.Get(ctx, "att-1")
	got.Responses["q1"] = domain.Response{QuestionID: "q1", AnswerID: "a1"}

	again, _ := store.Get(ctx, "att-1")
	if len(again.Responses) != 0 {
		t.Fatalf("mutating a returned attempt must not affect the store")
	}
}
