package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agriskills-quiz-service/internal/domain"
)

const uniqueViolation = "23505"

// AttemptStore is the Postgres attempt ledger. Two constraints carry the
// engine's concurrency guarantees:
//
//   - the partial unique index attempts_live_uq(user_id, quiz_id) WHERE
//     submitted_at IS NULL makes concurrent starts race safely: the loser
//     gets a unique violation, surfaced as domain.ErrAttemptConflict;
//   - Close is UPDATE ... WHERE submitted_at IS NULL, so of two concurrent
//     submits exactly one writes the terminal row and the other sees
//     domain.ErrAttemptAlreadySubmitted.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) Create(ctx context.Context, attempt domain.Attempt) error {
	snapshot, err := json.Marshal(attempt.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	responses, err := json.Marshal(attempt.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO attempts
		   (id, user_id, quiz_id, chapter_id, started_at, time_limit_minutes, quiz_snapshot, responses)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		attempt.ID, attempt.UserID, attempt.QuizID, attempt.ChapterID,
		attempt.StartedAt, attempt.TimeLimitMinutes, string(snapshot), string(responses))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAttemptConflict
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	row := s.pool.QueryRow(ctx, selectAttempt+` WHERE id=$1`, attemptID)
	attempt, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Attempt{}, domain.ErrAttemptNotFound
		}
		return domain.Attempt{}, err
	}
	return attempt, nil
}

func (s *AttemptStore) FindInProgress(ctx context.Context, userID, quizID string) (domain.Attempt, bool, error) {
	row := s.pool.QueryRow(ctx,
		selectAttempt+` WHERE user_id=$1 AND quiz_id=$2 AND submitted_at IS NULL`, userID, quizID)
	attempt, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Attempt{}, false, nil
		}
		return domain.Attempt{}, false, err
	}
	return attempt, true, nil
}

func (s *AttemptStore) Close(ctx context.Context, attemptID string, result domain.AttemptResult) (domain.Attempt, error) {
	responses, err := json.Marshal(result.Responses)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("marshal responses: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE attempts
		    SET submitted_at=$2, responses=$3, score=$4, points_earned=$5, points_possible=$6, passed=$7
		  WHERE id=$1 AND submitted_at IS NULL`,
		attemptID, result.SubmittedAt, string(responses),
		result.Percentage, result.PointsEarned, result.PointsPossible, result.Passed)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("close attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row does not exist or it is already terminal.
		if _, err := s.Get(ctx, attemptID); err != nil {
			return domain.Attempt{}, err
		}
		return domain.Attempt{}, domain.ErrAttemptAlreadySubmitted
	}
	return s.Get(ctx, attemptID)
}

func (s *AttemptStore) ListSubmitted(ctx context.Context, userID string, quizIDs []string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		selectAttempt+` WHERE user_id=$1 AND quiz_id = ANY($2) AND submitted_at IS NOT NULL`,
		userID, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, attempt)
	}
	return out, rows.Err()
}

const selectAttempt = `
	SELECT id, user_id, quiz_id, chapter_id, started_at, time_limit_minutes,
	       quiz_snapshot, responses, submitted_at, score, points_earned, points_possible, passed
	  FROM attempts`

func scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var (
		a            domain.Attempt
		limit        *int
		snapshotRaw  []byte
		responsesRaw []byte
		submittedAt  *time.Time
		score        *int
		passed       *bool
	)
	err := row.Scan(&a.ID, &a.UserID, &a.QuizID, &a.ChapterID, &a.StartedAt, &limit,
		&snapshotRaw, &responsesRaw, &submittedAt, &score, &a.PointsEarned, &a.PointsPossible, &passed)
	if err != nil {
		return domain.Attempt{}, err
	}
	a.TimeLimitMinutes = limit
	a.SubmittedAt = submittedAt
	a.Score = score
	a.Passed = passed
	if err := json.Unmarshal(snapshotRaw, &a.Snapshot); err != nil {
		return domain.Attempt{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	a.Responses = map[string]domain.Response{}
	if len(responsesRaw) > 0 {
		if err := json.Unmarshal(responsesRaw, &a.Responses); err != nil {
			return domain.Attempt{}, fmt.Errorf("unmarshal responses: %w", err)
		}
	}
	return a, nil
}
