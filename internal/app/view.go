package app

import "agriskills-quiz-service/internal/domain"

// AnswerView is the client-safe projection of an answer. It structurally has
// no correctness field, so the answer key cannot leak through serialization.
type AnswerView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID      string              `json:"id"`
	Text    string              `json:"text"`
	Type    domain.QuestionType `json:"type"`
	Points  int                 `json:"points"`
	Answers []AnswerView        `json:"answers"`
}

type QuizView struct {
	QuizID       string         `json:"quizId"`
	Title        string         `json:"title"`
	PassingScore int            `json:"passingScore"`
	Questions    []QuestionView `json:"questions"`
}

// StudentView projects a snapshot into what the quiz-taking client may see:
// question and answer text plus ids, never the correct-answer markers.
func StudentView(snapshot domain.QuizSnapshot) QuizView {
	view := QuizView{
		QuizID:       snapshot.QuizID,
		Title:        snapshot.Title,
		PassingScore: snapshot.PassingScore,
		Questions:    make([]QuestionView, 0, len(snapshot.Questions)),
	}
	for _, q := range snapshot.Questions {
		qv := QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Type:    q.Type,
			Points:  q.Points,
			Answers: make([]AnswerView, 0, len(q.Answers)),
		}
		if q.Type == domain.QuestionFillInBlank {
			// Accepted strings are the answer key; the client types free
			// text and gets no options at all.
			qv.Answers = nil
		} else {
			for _, a := range q.Answers {
				qv.Answers = append(qv.Answers, AnswerView{ID: a.ID, Text: a.Text})
			}
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}
