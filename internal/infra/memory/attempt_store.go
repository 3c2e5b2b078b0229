package memory

import (
	"context"
	"sync"

	"agriskills-quiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore, used by
// tests and by demo mode without Postgres. The single mutex gives the same
// guarantees the SQL store gets from its unique index and conditional update:
// one live attempt per (user, quiz), close exactly once.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]domain.Attempt)}
}

func (s *AttemptStore) Create(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.attempts {
		if existing.UserID == attempt.UserID && existing.QuizID == attempt.QuizID && existing.InProgress() {
			return domain.ErrAttemptConflict
		}
	}
	s.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (s *AttemptStore) Get(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return cloneAttempt(attempt), nil
}

func (s *AttemptStore) FindInProgress(_ context.Context, userID, quizID string) (domain.Attempt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, attempt := range s.attempts {
		if attempt.UserID == userID && attempt.QuizID == quizID && attempt.InProgress() {
			return cloneAttempt(attempt), true, nil
		}
	}
	return domain.Attempt{}, false, nil
}

func (s *AttemptStore) Close(_ context.Context, attemptID string, result domain.AttemptResult) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if !attempt.InProgress() {
		return domain.Attempt{}, domain.ErrAttemptAlreadySubmitted
	}
	submittedAt := result.SubmittedAt
	score := result.Percentage
	passed := result.Passed
	attempt.SubmittedAt = &submittedAt
	attempt.Responses = cloneResponses(result.Responses)
	attempt.Score = &score
	attempt.PointsEarned = result.PointsEarned
	attempt.PointsPossible = result.PointsPossible
	attempt.Passed = &passed
	s.attempts[attemptID] = attempt
	return cloneAttempt(attempt), nil
}

func (s *AttemptStore) ListSubmitted(_ context.Context, userID string, quizIDs []string) ([]domain.Attempt, error) {
	wanted := make(map[string]struct{}, len(quizIDs))
	for _, id := range quizIDs {
		wanted[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attempt
	for _, attempt := range s.attempts {
		if attempt.UserID != userID || attempt.InProgress() {
			continue
		}
		if _, ok := wanted[attempt.QuizID]; !ok {
			continue
		}
		out = append(out, cloneAttempt(attempt))
	}
	return out, nil
}

// cloneAttempt keeps callers from mutating stored state through shared maps
// and pointers.
func cloneAttempt(a domain.Attempt) domain.Attempt {
	a.Responses = cloneResponses(a.Responses)
	if a.SubmittedAt != nil {
		t := *a.SubmittedAt
		a.SubmittedAt = &t
	}
	if a.TimeLimitMinutes != nil {
		v := *a.TimeLimitMinutes
		a.TimeLimitMinutes = &v
	}
	if a.Score != nil {
		v := *a.Score
		a.Score = &v
	}
	if a.Passed != nil {
		v := *a.Passed
		a.Passed = &v
	}
	return a
}

func cloneResponses(in map[string]domain.Response) map[string]domain.Response {
	out := make(map[string]domain.Response, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
