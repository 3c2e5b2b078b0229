package domain

import "fmt"

// Validate checks the shape invariants of a quiz definition:
// multiple_choice needs at least two answers with exactly one correct,
// true_false exactly two with exactly one correct, fill_in_blank at least
// one accepted string. Used when quizzes enter the catalog.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuiz)
	}
	if q.PassingScore < 1 || q.PassingScore > 100 {
		return fmt.Errorf("%w: passing score %d out of range 1-100", ErrInvalidQuiz, q.PassingScore)
	}
	if q.TimeLimitMinutes != nil && *q.TimeLimitMinutes <= 0 {
		return fmt.Errorf("%w: non-positive time limit", ErrInvalidQuiz)
	}
	for _, question := range q.Questions {
		if err := question.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (q Question) validate() error {
	if q.Points < 0 {
		return fmt.Errorf("%w: question %s has negative points", ErrInvalidQuiz, q.ID)
	}
	correct := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	switch q.Type {
	case QuestionMultipleChoice:
		if len(q.Answers) < 2 {
			return fmt.Errorf("%w: question %s needs at least two answers", ErrInvalidQuiz, q.ID)
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %s needs exactly one correct answer", ErrInvalidQuiz, q.ID)
		}
	case QuestionTrueFalse:
		if len(q.Answers) != 2 {
			return fmt.Errorf("%w: question %s needs exactly two answers", ErrInvalidQuiz, q.ID)
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %s needs exactly one correct answer", ErrInvalidQuiz, q.ID)
		}
	case QuestionFillInBlank:
		if len(q.Answers) == 0 {
			return fmt.Errorf("%w: question %s needs at least one accepted answer", ErrInvalidQuiz, q.ID)
		}
	default:
		return fmt.Errorf("%w: question %s has unknown type %q", ErrInvalidQuiz, q.ID, q.Type)
	}
	return nil
}

// ValidateResponses rejects response payloads that do not fit the question
// set: unknown question ids, answer ids that belong to a different question,
// or a free-text answer on a choice question. Silently dropping any of these
// would corrupt the score, so they fail the whole submission.
func ValidateResponses(questions []Question, responses map[string]Response) error {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for qid, resp := range responses {
		q, ok := byID[qid]
		if !ok {
			return fmt.Errorf("%w: unknown question %s", ErrInvalidResponse, qid)
		}
		switch q.Type {
		case QuestionMultipleChoice, QuestionTrueFalse:
			if resp.AnswerID == "" {
				return fmt.Errorf("%w: question %s requires an answer id", ErrInvalidResponse, qid)
			}
			if resp.Text != "" {
				return fmt.Errorf("%w: question %s does not take free text", ErrInvalidResponse, qid)
			}
			if !hasAnswer(q, resp.AnswerID) {
				return fmt.Errorf("%w: answer %s does not belong to question %s", ErrInvalidResponse, resp.AnswerID, qid)
			}
		case QuestionFillInBlank:
			if resp.AnswerID != "" {
				return fmt.Errorf("%w: question %s takes free text, not an answer id", ErrInvalidResponse, qid)
			}
		}
	}
	return nil
}

func hasAnswer(q Question, answerID string) bool {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return true
		}
	}
	return false
}
