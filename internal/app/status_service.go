package app

import (
	"context"
	"fmt"

	"agriskills-quiz-service/internal/domain"
)

// ChapterResolver maps chapter ids to their quiz ids. A chapter has at most
// one quiz; chapters without one are simply absent from the result.
type ChapterResolver interface {
	QuizzesByChapter(ctx context.Context, chapterIDs []string) (map[string]string, error)
}

// StatusService is the read-only aggregator the chapter navigation uses to
// gate progression: prior pass/fail plus best score per chapter, derived from
// the attempt ledger on demand.
type StatusService struct {
	catalog  ChapterResolver
	attempts AttemptStore
}

func NewStatusService(catalog ChapterResolver, attempts AttemptStore) *StatusService {
	return &StatusService{catalog: catalog, attempts: attempts}
}

// StatusFor reports, for each chapter that has a quiz, whether the user has
// ever passed it and the best recorded score. The whole batch resolves with
// one catalog lookup and one ledger scan, not a round trip per chapter.
//
// AttemptDate is the timestamp of the attempt that produced the best score;
// on equal scores the later submission wins. In-progress attempts never
// count.
func (s *StatusService) StatusFor(ctx context.Context, userID string, chapterIDs []string) (map[string]domain.ChapterStatus, error) {
	quizByChapter, err := s.catalog.QuizzesByChapter(ctx, chapterIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve chapters: %w", err)
	}
	if len(quizByChapter) == 0 {
		return map[string]domain.ChapterStatus{}, nil
	}

	quizIDs := make([]string, 0, len(quizByChapter))
	chapterByQuiz := make(map[string]string, len(quizByChapter))
	for chapterID, quizID := range quizByChapter {
		quizIDs = append(quizIDs, quizID)
		chapterByQuiz[quizID] = chapterID
	}

	attempts, err := s.attempts.ListSubmitted(ctx, userID, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	statuses := make(map[string]domain.ChapterStatus)
	for _, attempt := range attempts {
		chapterID, ok := chapterByQuiz[attempt.QuizID]
		if !ok || attempt.SubmittedAt == nil || attempt.Score == nil {
			continue
		}
		current, seen := statuses[chapterID]
		score := *attempt.Score
		if !seen || score > current.BestScore ||
			(score == current.BestScore && attempt.SubmittedAt.After(current.AttemptDate)) {
			current.BestScore = score
			current.AttemptDate = *attempt.SubmittedAt
		}
		if attempt.Passed != nil && *attempt.Passed {
			current.Passed = true
		}
		statuses[chapterID] = current
	}
	return statuses, nil
}
