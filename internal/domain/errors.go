package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz definition could not be located.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizUnavailable is returned for quizzes that exist but cannot be
	// started (inactive, or no active questions).
	ErrQuizUnavailable = errors.New("quiz not available")
	// ErrAttemptNotFound indicates a stale or unknown attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptAlreadySubmitted is the concurrency guard on the terminal
	// transition: an attempt can be closed exactly once.
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	// ErrAttemptConflict is returned by stores when a second in-progress
	// attempt for the same (user, quiz) would be created.
	ErrAttemptConflict = errors.New("in-progress attempt already exists")
	// ErrTimeLimitExceeded rejects a manual submit that arrived past the
	// time limit plus the grace window.
	ErrTimeLimitExceeded = errors.New("time limit exceeded")
	// ErrInvalidResponse flags a malformed response payload, e.g. an answer
	// id that does not belong to the question.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrInvalidQuiz flags a catalog definition that violates the
	// question-shape invariants.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
)
