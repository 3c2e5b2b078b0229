package app

import (
	"strings"

	"agriskills-quiz-service/internal/domain"
)

// ScoreQuiz grades one set of responses against a quiz snapshot. It is a pure
// function: no I/O, no clock, no ledger access, so the authenticated submit
// path and the unauthenticated preview path share it unchanged.
//
// Unanswered or wrong questions contribute zero points. The percentage is
// pointsEarned/pointsPossible rounded half-up to the nearest integer, and the
// pass boundary is inclusive: percentage >= passingScore passes.
func ScoreQuiz(snapshot domain.QuizSnapshot, responses map[string]domain.Response) domain.ScoreResult {
	result := domain.ScoreResult{}
	for _, q := range snapshot.Questions {
		points := q.Points
		if points == 0 {
			points = 1
		}
		result.PointsPossible += points
		resp, answered := responses[q.ID]
		if answered && questionCorrect(q, resp) {
			result.PointsEarned += points
		}
	}
	result.Percentage = percentage(result.PointsEarned, result.PointsPossible)
	result.Passed = result.Percentage >= snapshot.PassingScore
	return result
}

func questionCorrect(q domain.Question, resp domain.Response) bool {
	switch q.Type {
	case domain.QuestionMultipleChoice, domain.QuestionTrueFalse:
		for _, a := range q.Answers {
			if a.IsCorrect {
				return a.ID == resp.AnswerID
			}
		}
		return false
	case domain.QuestionFillInBlank:
		given := normalizeBlank(resp.Text)
		if given == "" {
			return false
		}
		for _, a := range q.Answers {
			if normalizeBlank(a.Text) == given {
				return true
			}
		}
	}
	return false
}

// normalizeBlank implements the fill_in_blank matching rule: trimmed,
// case-insensitive exact match.
func normalizeBlank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// percentage computes round-half-up(earned/possible*100) in integer
// arithmetic; a zero-point quiz scores 0.
func percentage(earned, possible int) int {
	if possible <= 0 {
		return 0
	}
	return (earned*100*2 + possible) / (2 * possible)
}
