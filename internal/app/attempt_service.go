package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agriskills-quiz-service/internal/domain"
)

// QuizRepository loads quiz definitions (from cache/backing store). The
// returned quiz includes answer keys; callers must use StudentView before
// anything leaves the server.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptStore is the attempt ledger. Create must refuse a second in-progress
// row for the same (user, quiz) with domain.ErrAttemptConflict, and Close must
// be an atomic read-modify-write: once an attempt is closed every later Close
// fails with domain.ErrAttemptAlreadySubmitted.
type AttemptStore interface {
	Create(ctx context.Context, attempt domain.Attempt) error
	Get(ctx context.Context, attemptID string) (domain.Attempt, error)
	FindInProgress(ctx context.Context, userID, quizID string) (domain.Attempt, bool, error)
	Close(ctx context.Context, attemptID string, result domain.AttemptResult) (domain.Attempt, error)
	ListSubmitted(ctx context.Context, userID string, quizIDs []string) ([]domain.Attempt, error)
}

// DefaultGracePeriod tolerates network latency on manual submits that arrive
// slightly past the nominal time limit. Tunable via config; not a
// user-visible guarantee.
const DefaultGracePeriod = 30 * time.Second

// AttemptService drives the attempt state machine: start -> in progress ->
// submitted (terminal), with expiry handled on the next start. The service
// itself is stateless; all state lives in the attempt store.
type AttemptService struct {
	quizzes  QuizRepository
	attempts AttemptStore
	grace    time.Duration
	now      func() time.Time
	newID    func() string
}

func NewAttemptService(quizzes QuizRepository, attempts AttemptStore, grace time.Duration) *AttemptService {
	if grace < 0 {
		grace = 0
	}
	return &AttemptService{
		quizzes:  quizzes,
		attempts: attempts,
		grace:    grace,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *AttemptService) WithClock(now func() time.Time) *AttemptService {
	s.now = now
	return s
}

// Start begins (or resumes) an attempt at a quiz.
//
// Starting is idempotent while a live attempt exists: a second call returns
// the same attempt. A live attempt found past its time limit is first closed
// as an auto-submission of whatever responses it holds, then a fresh attempt
// is created, so a page reload cannot stretch the time limit.
func (s *AttemptService) Start(ctx context.Context, userID, quizID string) (domain.Attempt, bool, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Attempt{}, false, err
	}
	if !quiz.IsActive || len(quiz.Questions) == 0 {
		return domain.Attempt{}, false, domain.ErrQuizUnavailable
	}

	live, ok, err := s.attempts.FindInProgress(ctx, userID, quizID)
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("find attempt: %w", err)
	}
	now := s.now()
	if ok {
		if !live.Expired(now) {
			return live, true, nil
		}
		if err := s.closeExpired(ctx, live, now); err != nil {
			return domain.Attempt{}, false, err
		}
	}

	attempt := domain.Attempt{
		ID:               s.newID(),
		UserID:           userID,
		QuizID:           quiz.ID,
		ChapterID:        quiz.ChapterID,
		StartedAt:        now,
		TimeLimitMinutes: copyLimit(quiz.TimeLimitMinutes),
		Snapshot: domain.QuizSnapshot{
			QuizID:       quiz.ID,
			Title:        quiz.Title,
			PassingScore: quiz.PassingScore,
			Questions:    quiz.Questions,
		},
		Responses: map[string]domain.Response{},
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		// Lost a concurrent start race: the winner's row is the live
		// attempt, resume it instead of creating a duplicate.
		if errors.Is(err, domain.ErrAttemptConflict) {
			winner, ok, findErr := s.attempts.FindInProgress(ctx, userID, quizID)
			if findErr == nil && ok {
				return winner, true, nil
			}
		}
		return domain.Attempt{}, false, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, false, nil
}

// closeExpired force-closes an overdue attempt with its last recorded
// responses (usually empty), counting as a failed-or-passed auto submission.
func (s *AttemptService) closeExpired(ctx context.Context, attempt domain.Attempt, now time.Time) error {
	result := domain.AttemptResult{
		SubmittedAt: now,
		Responses:   attempt.Responses,
		ScoreResult: ScoreQuiz(attempt.Snapshot, attempt.Responses),
	}
	_, err := s.attempts.Close(ctx, attempt.ID, result)
	if err != nil && !errors.Is(err, domain.ErrAttemptAlreadySubmitted) {
		return fmt.Errorf("close expired attempt: %w", err)
	}
	return nil
}

// Submit closes an attempt with the final responses and the computed score.
// It is deliberately not idempotent: a second call fails with
// ErrAttemptAlreadySubmitted so nothing can silently re-score.
//
// Manual submits arriving past the time limit plus the grace window are
// rejected with ErrTimeLimitExceeded. Auto-submits (the client timer hit
// zero) are always honored and scored normally, empty responses included.
func (s *AttemptService) Submit(ctx context.Context, attemptID string, responses map[string]domain.Response, autoSubmit bool) (domain.Attempt, error) {
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if !attempt.InProgress() {
		return domain.Attempt{}, domain.ErrAttemptAlreadySubmitted
	}
	if responses == nil {
		responses = map[string]domain.Response{}
	}
	if err := domain.ValidateResponses(attempt.Snapshot.Questions, responses); err != nil {
		return domain.Attempt{}, err
	}

	// The authoritative elapsed time is server clock minus StartedAt;
	// nothing the client reports can extend it.
	now := s.now()
	if attempt.TimeLimitMinutes != nil && !autoSubmit {
		limit := time.Duration(*attempt.TimeLimitMinutes) * time.Minute
		if now.Sub(attempt.StartedAt) > limit+s.grace {
			return domain.Attempt{}, domain.ErrTimeLimitExceeded
		}
	}

	result := domain.AttemptResult{
		SubmittedAt: now,
		Responses:   responses,
		ScoreResult: ScoreQuiz(attempt.Snapshot, responses),
	}
	closed, err := s.attempts.Close(ctx, attemptID, result)
	if err != nil {
		return domain.Attempt{}, err
	}
	return closed, nil
}

// Get returns an attempt by id, so clients that hit the already-submitted
// guard can fetch the recorded result instead of retrying the submit.
func (s *AttemptService) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	return s.attempts.Get(ctx, attemptID)
}

// Preview scores a response set against a quiz without touching the ledger.
// This backs the unauthenticated free-preview mode: same scoring, no attempt
// row, no effect on chapter status.
func (s *AttemptService) Preview(ctx context.Context, quizID string, responses map[string]domain.Response) (domain.ScoreResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if !quiz.IsActive || len(quiz.Questions) == 0 {
		return domain.ScoreResult{}, domain.ErrQuizUnavailable
	}
	if responses == nil {
		responses = map[string]domain.Response{}
	}
	if err := domain.ValidateResponses(quiz.Questions, responses); err != nil {
		return domain.ScoreResult{}, err
	}
	snapshot := domain.QuizSnapshot{
		QuizID:       quiz.ID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
		Questions:    quiz.Questions,
	}
	return ScoreQuiz(snapshot, responses), nil
}

func copyLimit(limit *int) *int {
	if limit == nil {
		return nil
	}
	v := *limit
	return &v
}
