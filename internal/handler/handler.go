package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/studyai/studyai/internal/i18n"
	"github.com/studyai/studyai/internal/model"
	"github.com/studyai/studyai/internal/pdf"
	"github.com/studyai/studyai/internal/quiz"
	"github.com/studyai/studyai/internal/session"
	"github.com/studyai/studyai/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	sessions  *session.Manager
	gen       session.Generator
	store     *store.Store
	adminHash []byte // bcrypt hash; empty disables admin routes
}

// New creates a new Handler. The store may be nil, in which case sessions are
// not persisted and the admin history route reports no data.
func New(mgr *session.Manager, gen session.Generator, st *store.Store, adminHash []byte) *Handler {
	return &Handler{sessions: mgr, gen: gen, store: st, adminHash: adminHash}
}

// Routes registers all HTTP routes. The four top-level endpoints keep the
// wire contract of the original backend; the /sessions tree is the
// server-side session API.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/get_subtopics", h.handleGetSubtopics)
	r.Post("/generate_explanation", h.handleGenerateExplanation)
	r.Post("/generate_quiz", h.handleGenerateQuiz)
	r.Post("/export_session_pdf", h.handleExportSessionPDF)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.handleGetSession)
			r.Post("/subtopics", h.handleSessionSubtopics)
			r.Post("/generate", h.handleSessionGenerate)
			r.Post("/answers", h.handleSessionAnswer)
			r.Post("/submit", h.handleSessionSubmit)
			r.Post("/reset", h.handleSessionReset)
			r.Get("/pdf", h.handleSessionPDF)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.adminOnly)
		r.Get("/sessions", h.handleAdminSessions)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeError sends a localized error notice.
func writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, map[string]string{"error": appI18n.T(r.Context(), msgID)})
}

// sessionError maps manager errors onto HTTP statuses.
func sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyTopic):
		writeError(w, r, http.StatusBadRequest, "ErrEmptyTopic")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "ErrSessionNotFound")
	case errors.Is(err, session.ErrBusy):
		writeError(w, r, http.StatusConflict, "ErrBusy")
	case errors.Is(err, session.ErrGraded):
		writeError(w, r, http.StatusConflict, "ErrGraded")
	case errors.Is(err, session.ErrNoContent):
		writeError(w, r, http.StatusBadRequest, "ErrNoContent")
	default:
		slog.Error("session operation failed", "error", err)
		writeError(w, r, http.StatusBadGateway, "ErrGenerate")
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) handleGetSubtopics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, r, http.StatusBadRequest, "ErrEmptyTopic")
		return
	}

	subtopics, err := h.gen.Subtopics(r.Context(), req.Topic)
	if err != nil {
		slog.Error("subtopic discovery failed", "topic", req.Topic, "error", err)
		writeError(w, r, http.StatusBadGateway, "ErrSubtopics")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{
		"subtopics": session.SubtopicList(subtopics),
	})
}

func (h *Handler) handleGenerateExplanation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decode(r, &req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}

	explanation, err := h.gen.Explain(r.Context(), req.Prompt)
	if err != nil {
		slog.Error("explanation generation failed", "error", err)
		writeError(w, r, http.StatusBadGateway, "ErrGenerate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"explanation": explanation})
}

func (h *Handler) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decode(r, &req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}

	raw, err := h.gen.GenerateQuiz(r.Context(), req.Prompt)
	if err != nil {
		slog.Error("quiz generation failed", "error", err)
		writeError(w, r, http.StatusBadGateway, "ErrGenerate")
		return
	}

	questions := quiz.ParseText(raw)
	if questions == nil {
		questions = []model.QuizQuestion{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.QuizQuestion{"quiz": questions})
}

func (h *Handler) handleExportSessionPDF(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session model.SessionExport `json:"session"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	if req.Session.Explanation == "" && len(req.Session.Quiz) == 0 {
		writeError(w, r, http.StatusBadRequest, "ErrNoContent")
		return
	}

	generatedAt, err := time.Parse(time.RFC3339, req.Session.GeneratedAt)
	if err != nil {
		generatedAt = time.Now().UTC()
		req.Session.GeneratedAt = generatedAt.Format(time.RFC3339)
	}

	h.servePDF(w, r, req.Session, generatedAt)
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, payload model.SessionExport, generatedAt time.Time) {
	data, err := pdf.Render(payload)
	if err != nil {
		slog.Error("PDF render failed", "topic", payload.Topic, "error", err)
		writeError(w, r, http.StatusInternalServerError, "ErrExport")
		return
	}

	filename := session.ExportFilename(payload.Topic, generatedAt)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("write PDF response", "error", err)
	}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}

	s, err := h.sessions.Create(req.Topic)
	if err != nil {
		sessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		sessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleSessionSubtopics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	list, err := h.sessions.FetchSubtopics(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			sessionError(w, r, err)
			return
		}
		slog.Error("subtopic discovery failed", "session", id, "error", err)
		writeError(w, r, http.StatusBadGateway, "ErrSubtopics")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"subtopics": list})
}

func (h *Handler) handleSessionGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subtopic   string           `json:"subtopic"`
		Difficulty model.Difficulty `json:"difficulty"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyEasy
	}

	id := chi.URLParam(r, "sessionID")
	s, err := h.sessions.Generate(r.Context(), id, req.Subtopic, req.Difficulty)
	if err != nil {
		sessionError(w, r, err)
		return
	}

	h.persist(s)
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleSessionAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index  int    `json:"index"`
		Option string `json:"option"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}

	s, err := h.sessions.Answer(chi.URLParam(r, "sessionID"), req.Index, req.Option)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrGraded) {
			sessionError(w, r, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleSessionSubmit(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Submit(chi.URLParam(r, "sessionID"))
	if err != nil {
		sessionError(w, r, err)
		return
	}

	h.persist(s)
	writeJSON(w, http.StatusOK, map[string]any{
		"session": s,
		"message": appI18n.Td(r.Context(), "ScoreLine", map[string]any{
			"Correct": s.ScoreRaw,
			"Total":   len(s.Quiz),
		}),
	})
}

func (h *Handler) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Reset(chi.URLParam(r, "sessionID"))
	if err != nil {
		sessionError(w, r, err)
		return
	}

	h.persist(s)
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleSessionPDF(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		sessionError(w, r, err)
		return
	}

	payload, err := session.BuildExportPayload(s)
	if err != nil {
		sessionError(w, r, err)
		return
	}

	generatedAt := s.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}
	h.servePDF(w, r, payload, generatedAt)
}

// persist snapshots a session into the history store. Failures are logged
// and not surfaced to the client.
func (h *Handler) persist(s model.Session) {
	if h.store == nil {
		return
	}
	if err := h.store.SaveSession(s); err != nil {
		slog.Error("persist session", "id", s.ID, "error", err)
	}
}
