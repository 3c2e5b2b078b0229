package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"agriskills-quiz-service/internal/app"
	"agriskills-quiz-service/internal/domain"
)

// Handler exposes the attempt lifecycle, preview scoring, and chapter status
// over JSON. Everything here is thin translation; the invariants live in the
// app layer.
type Handler struct {
	attempts *app.AttemptService
	status   *app.StatusService
}

func NewHandler(attempts *app.AttemptService, status *app.StatusService) *Handler {
	return &Handler{attempts: attempts, status: status}
}

type startRequest struct {
	UserID string `json:"userId"`
}

type startResponse struct {
	AttemptID        string       `json:"attemptId"`
	Resumed          bool         `json:"resumed"`
	Quiz             app.QuizView `json:"quiz"`
	StartedAt        time.Time    `json:"startedAt"`
	TimeLimitMinutes *int         `json:"timeLimitMinutes,omitempty"`
}

type responsePayload struct {
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId,omitempty"`
	Text       string `json:"text,omitempty"`
}

type submitRequest struct {
	Responses  []responsePayload `json:"responses"`
	AutoSubmit bool              `json:"autoSubmit"`
}

type resultResponse struct {
	AttemptID      string     `json:"attemptId"`
	Score          int        `json:"score"`
	PointsEarned   int        `json:"pointsEarned"`
	PointsPossible int        `json:"pointsPossible"`
	Passed         bool       `json:"passed"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
}

type attemptResponse struct {
	AttemptID string          `json:"attemptId"`
	QuizID    string          `json:"quizId"`
	Status    string          `json:"status"` // in_progress|submitted
	Result    *resultResponse `json:"result,omitempty"`
}

type previewRequest struct {
	Responses []responsePayload `json:"responses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// StartAttempt handles POST /api/quizzes/{quizID}/attempts. The returned quiz
// view carries no correctness markers.
func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	attempt, resumed, err := h.attempts.Start(r.Context(), req.UserID, quizID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	writeJSON(w, status, startResponse{
		AttemptID:        attempt.ID,
		Resumed:          resumed,
		Quiz:             app.StudentView(attempt.Snapshot),
		StartedAt:        attempt.StartedAt,
		TimeLimitMinutes: attempt.TimeLimitMinutes,
	})
}

// SubmitAttempt handles POST /api/attempts/{attemptID}/submit.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	responses, err := collectResponses(req.Responses)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	attempt, err := h.attempts.Submit(r.Context(), attemptID, responses, req.AutoSubmit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoredResult(attempt))
}

// GetAttempt handles GET /api/attempts/{attemptID}; clients hitting the
// already-submitted guard fetch the recorded result here.
func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	attempt, err := h.attempts.Get(r.Context(), attemptID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := attemptResponse{AttemptID: attempt.ID, QuizID: attempt.QuizID, Status: "in_progress"}
	if !attempt.InProgress() {
		resp.Status = "submitted"
		result := scoredResult(attempt)
		resp.Result = &result
	}
	writeJSON(w, http.StatusOK, resp)
}

// PreviewQuiz handles POST /api/quizzes/{quizID}/preview: scoring without an
// attempt row, for the unauthenticated free-preview mode.
func (h *Handler) PreviewQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	responses, err := collectResponses(req.Responses)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.attempts.Preview(r.Context(), quizID, responses)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ChapterStatus handles GET /api/users/{userID}/chapter-status?chapters=a,b.
func (h *Handler) ChapterStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	raw := r.URL.Query().Get("chapters")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "chapters query parameter required")
		return
	}
	var chapterIDs []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			chapterIDs = append(chapterIDs, id)
		}
	}

	statuses, err := h.status.StatusFor(r.Context(), userID, chapterIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func collectResponses(payloads []responsePayload) (map[string]domain.Response, error) {
	responses := make(map[string]domain.Response, len(payloads))
	for _, p := range payloads {
		if p.QuestionID == "" {
			return nil, errors.New("response missing questionId")
		}
		if _, dup := responses[p.QuestionID]; dup {
			return nil, fmt.Errorf("duplicate response for question %s", p.QuestionID)
		}
		responses[p.QuestionID] = domain.Response{
			QuestionID: p.QuestionID,
			AnswerID:   p.AnswerID,
			Text:       p.Text,
		}
	}
	return responses, nil
}

func scoredResult(attempt domain.Attempt) resultResponse {
	result := resultResponse{
		AttemptID:      attempt.ID,
		PointsEarned:   attempt.PointsEarned,
		PointsPossible: attempt.PointsPossible,
		SubmittedAt:    attempt.SubmittedAt,
	}
	if attempt.Score != nil {
		result.Score = *attempt.Score
	}
	if attempt.Passed != nil {
		result.Passed = *attempt.Passed
	}
	return result
}

// writeDomainError maps the engine's error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuizUnavailable), errors.Is(err, domain.ErrAttemptAlreadySubmitted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTimeLimitExceeded):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidResponse):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
