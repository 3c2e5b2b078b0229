package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agriskills-quiz-service/internal/domain"
)

// QuizLoader reads quiz JSONB from Postgres. The chapter_id column is kept
// alongside the document so the status aggregator can resolve chapters in
// one query.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

// QuizzesByChapter resolves chapter ids to quiz ids with a single query.
func (l *QuizLoader) QuizzesByChapter(ctx context.Context, chapterIDs []string) (map[string]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT chapter_id, id FROM quizzes WHERE chapter_id = ANY($1)`, chapterIDs)
	if err != nil {
		return nil, fmt.Errorf("quizzes by chapter: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var chapterID, quizID string
		if err := rows.Scan(&chapterID, &quizID); err != nil {
			return nil, fmt.Errorf("scan chapter row: %w", err)
		}
		out[chapterID] = quizID
	}
	return out, rows.Err()
}

// PutQuiz upserts a quiz definition; used by the seed command.
func (l *QuizLoader) PutQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO quizzes (id, chapter_id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET chapter_id=EXCLUDED.chapter_id, data=EXCLUDED.data`,
		quiz.ID, quiz.ChapterID, string(raw))
	if err != nil {
		return fmt.Errorf("put quiz: %w", err)
	}
	return nil
}
