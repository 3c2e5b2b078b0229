package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the quiz engine's REST surface. The browser shell runs on a
// different origin, hence the permissive CORS policy.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/quizzes/{quizID}/attempts", h.StartAttempt)
		api.Post("/quizzes/{quizID}/preview", h.PreviewQuiz)
		api.Post("/attempts/{attemptID}/submit", h.SubmitAttempt)
		api.Get("/attempts/{attemptID}", h.GetAttempt)
		api.Get("/users/{userID}/chapter-status", h.ChapterStatus)
	})

	return r
}
