package app

import (
	"reflect"
	"testing"

	"agriskills-quiz-service/internal/domain"
)

func choiceQuestion(id, correctID string, points int, extra ...string) domain.Question {
	answers := []domain.Answer{{ID: correctID, Text: "right", IsCorrect: true}}
	for _, wrongID := range extra {
		answers = append(answers, domain.Answer{ID: wrongID, Text: "wrong"})
	}
	return domain.Question{ID: id, Text: "pick one", Type: domain.QuestionMultipleChoice, Points: points, Answers: answers}
}

func blankQuestion(id string, points int, accepted ...string) domain.Question {
	answers := make([]domain.Answer, 0, len(accepted))
	for i, text := range accepted {
		answers = append(answers, domain.Answer{ID: id + "-a" + string(rune('0'+i)), Text: text})
	}
	return domain.Question{ID: id, Text: "fill in", Type: domain.QuestionFillInBlank, Points: points, Answers: answers}
}

func snapshot(passing int, questions ...domain.Question) domain.QuizSnapshot {
	return domain.QuizSnapshot{QuizID: "quiz-1", Title: "Quiz", PassingScore: passing, Questions: questions}
}

func TestScoreQuizAllCorrect(t *testing.T) {
	snap := snapshot(50,
		choiceQuestion("q1", "a1", 1, "a2"),
		choiceQuestion("q2", "a3", 1, "a4"),
	)
	responses := map[string]domain.Response{
		"q1": {QuestionID: "q1", AnswerID: "a1"},
		"q2": {QuestionID: "q2", AnswerID: "a3"},
	}

	result := ScoreQuiz(snap, responses)
	if result.PointsEarned != 2 || result.PointsPossible != 2 {
		t.Fatalf("expected 2/2 points, got %d/%d", result.PointsEarned, result.PointsPossible)
	}
	if result.Percentage != 100 || !result.Passed {
		t.Fatalf("expected 100%% pass, got %d%% passed=%v", result.Percentage, result.Passed)
	}
}

func TestScoreQuizBoundaryInclusive(t *testing.T) {
	// One of two equal questions correct is exactly 50%, which passes a
	// passingScore of 50; the second question is left unanswered.
	snap := snapshot(50,
		choiceQuestion("q1", "a1", 1, "a2"),
		choiceQuestion("q2", "a3", 1, "a4"),
	)
	result := ScoreQuiz(snap, map[string]domain.Response{
		"q1": {QuestionID: "q1", AnswerID: "a1"},
	})
	if result.Percentage != 50 {
		t.Fatalf("expected 50%%, got %d%%", result.Percentage)
	}
	if !result.Passed {
		t.Fatalf("expected boundary score to pass")
	}
}

func TestScoreQuizRoundingDecidesPass(t *testing.T) {
	// 7 of 10 points = 70%; 69.5% must round up, 69.4% down. Build both
	// sides of the half with point weights.
	cases := []struct {
		name       string
		earnedIDs  []string
		questions  []domain.Question
		percentage int
		passed     bool
	}{
		{
			name: "exactly at passing score",
			questions: []domain.Question{
				choiceQuestion("q1", "a1", 7, "x1"),
				choiceQuestion("q2", "a2", 3, "x2"),
			},
			earnedIDs:  []string{"q1"},
			percentage: 70,
			passed:     true,
		},
		{
			name: "one point short",
			questions: []domain.Question{
				choiceQuestion("q1", "a1", 69, "x1"),
				choiceQuestion("q2", "a2", 31, "x2"),
			},
			earnedIDs:  []string{"q1"},
			percentage: 69,
			passed:     false,
		},
		{
			name: "half rounds up",
			// 5 of 8 points = 62.5% -> 63
			questions: []domain.Question{
				choiceQuestion("q1", "a1", 5, "x1"),
				choiceQuestion("q2", "a2", 3, "x2"),
			},
			earnedIDs:  []string{"q1"},
			percentage: 63,
			passed:     false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshot(70, tc.questions...)
			responses := map[string]domain.Response{}
			for _, qid := range tc.earnedIDs {
				responses[qid] = domain.Response{QuestionID: qid, AnswerID: "a" + qid[1:]}
			}
			result := ScoreQuiz(snap, responses)
			if result.Percentage != tc.percentage {
				t.Fatalf("expected %d%%, got %d%%", tc.percentage, result.Percentage)
			}
			if result.Passed != tc.passed {
				t.Fatalf("expected passed=%v at %d%%", tc.passed, result.Percentage)
			}
		})
	}
}

func TestScoreQuizFillInBlankMatching(t *testing.T) {
	snap := snapshot(100, blankQuestion("q1", 1, "Paris", "paris "))
	cases := []struct {
		text    string
		correct bool
	}{
		{"PARIS", true},
		{" paris", true},
		{"Paris", true},
		{"Pariss", false},
		{"", false},
	}
	for _, tc := range cases {
		result := ScoreQuiz(snap, map[string]domain.Response{
			"q1": {QuestionID: "q1", Text: tc.text},
		})
		if got := result.PointsEarned == 1; got != tc.correct {
			t.Fatalf("text %q: expected correct=%v", tc.text, tc.correct)
		}
	}
}

func TestScoreQuizFillInBlankScenario(t *testing.T) {
	snap := snapshot(100, blankQuestion("q1", 1, "42", "forty-two"))
	result := ScoreQuiz(snap, map[string]domain.Response{
		"q1": {QuestionID: "q1", Text: " Forty-Two "},
	})
	if result.PointsEarned != 1 || !result.Passed {
		t.Fatalf("expected ' Forty-Two ' to count as correct, got %+v", result)
	}
}

func TestScoreQuizEmptyAndUnanswered(t *testing.T) {
	snap := snapshot(70, choiceQuestion("q1", "a1", 3, "a2"), blankQuestion("q2", 2, "loam"))

	result := ScoreQuiz(snap, nil)
	if result.PointsEarned != 0 || result.PointsPossible != 5 {
		t.Fatalf("expected 0/5, got %d/%d", result.PointsEarned, result.PointsPossible)
	}
	if result.Percentage != 0 || result.Passed {
		t.Fatalf("expected 0%% fail, got %d%% passed=%v", result.Percentage, result.Passed)
	}

	// A quiz whose snapshot has no questions scores 0, never divides by zero.
	empty := ScoreQuiz(snapshot(70), nil)
	if empty.Percentage != 0 || empty.Passed {
		t.Fatalf("expected empty snapshot to score 0, got %+v", empty)
	}
}

func TestScoreQuizDeterministic(t *testing.T) {
	snap := snapshot(70,
		choiceQuestion("q1", "a1", 2, "a2"),
		blankQuestion("q2", 3, "clay", "Clay soil"),
	)
	responses := map[string]domain.Response{
		"q1": {QuestionID: "q1", AnswerID: "a2"},
		"q2": {QuestionID: "q2", Text: "CLAY SOIL"},
	}
	first := ScoreQuiz(snap, responses)
	second := ScoreQuiz(snap, responses)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scoring not deterministic: %+v vs %+v", first, second)
	}
}

func TestScoreQuizZeroPointQuestionDefaultsToOne(t *testing.T) {
	snap := snapshot(100, choiceQuestion("q1", "a1", 0, "a2"))
	result := ScoreQuiz(snap, map[string]domain.Response{"q1": {QuestionID: "q1", AnswerID: "a1"}})
	if result.PointsPossible != 1 || result.PointsEarned != 1 {
		t.Fatalf("expected zero-point question to count as one point, got %+v", result)
	}
}
