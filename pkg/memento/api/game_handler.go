package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/memento/pkg/memento/game/eventloop"
	"github.com/tendant/memento/pkg/memento/game/matching"
	"github.com/tendant/memento/pkg/memento/game/quiz"
	"github.com/tendant/memento/pkg/memento/metrics"
)

// ClickResponse reports whether a card click was accepted and the resulting board.
type ClickResponse struct {
	Accepted bool          `json:"accepted"`
	Game     matching.View `json:"game"`
}

// QuizView is the player facing rendering of a quiz.
type QuizView struct {
	Progress string         `json:"progress,omitempty"`
	Question *quiz.Question `json:"question,omitempty"`
	State    quiz.State     `json:"state"`
	Total    int            `json:"total"`
	Summary  *quiz.Summary  `json:"summary,omitempty"`
}

// AnswerRequest is the body of a quiz answer.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// AnswerResponse reports the correctness of an answer and the quiz after it.
type AnswerResponse struct {
	Correct bool     `json:"correct"`
	Quiz    QuizView `json:"quiz"`
}

// GameHandler serves the matching game and the quiz. Every game access runs
// on the event loop.
type GameHandler struct {
	loop    *eventloop.Loop
	metrics *metrics.Collector
}

// NewGameHandler creates a game handler. collector may be nil.
func NewGameHandler(loop *eventloop.Loop, collector *metrics.Collector) *GameHandler {
	return &GameHandler{loop: loop, metrics: collector}
}

// Routes returns the routes for games
func (h *GameHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/matching", h.GetMatching)
	r.Post("/matching", h.NewMatching)
	r.Post("/matching/cards/{index}", h.ClickCard)

	r.Get("/quiz", h.GetQuiz)
	r.Post("/quiz/answers", h.AnswerQuiz)
	r.Post("/quiz/reset", h.ResetQuiz)
	return r
}

// GetMatching returns the current board.
func (h *GameHandler) GetMatching(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	var view matching.View
	if !h.do(w, r, func() { view = matching.NewView(ws.Matching.Snapshot()) }) {
		return
	}
	respond(w, r, http.StatusOK, view)
}

// NewMatching deals a new shuffled deck.
func (h *GameHandler) NewMatching(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	var view matching.View
	if !h.do(w, r, func() {
		ws.Matching.Reset()
		view = matching.NewView(ws.Matching.Snapshot())
	}) {
		return
	}
	respond(w, r, http.StatusOK, view)
}

// ClickCard reveals the card at {index}. Ignored clicks are not errors.
func (h *GameHandler) ClickCard(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "card index must be a number")
		return
	}

	var resp ClickResponse
	if !h.do(w, r, func() {
		resp.Accepted = ws.Matching.Click(index)
		resp.Game = matching.NewView(ws.Matching.Snapshot())
	}) {
		return
	}
	respond(w, r, http.StatusOK, resp)
}

// GetQuiz returns the current question, or the summary once complete.
func (h *GameHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	var view QuizView
	if !h.do(w, r, func() { view = newQuizView(ws.Quiz) }) {
		return
	}
	respond(w, r, http.StatusOK, view)
}

// AnswerQuiz records an answer to the current question.
func (h *GameHandler) AnswerQuiz(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())

	var req AnswerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp AnswerResponse
	var answerErr error
	if !h.do(w, r, func() {
		resp.Correct, answerErr = ws.Quiz.Answer(req.Answer)
		resp.Quiz = newQuizView(ws.Quiz)
		if answerErr == nil && ws.Quiz.State().Complete && h.metrics != nil {
			h.metrics.QuizCompletions.WithLabelValues(string(resp.Quiz.Summary.Tier)).Inc()
		}
	}) {
		return
	}
	if errors.Is(answerErr, quiz.ErrComplete) {
		respondError(w, r, http.StatusConflict, answerErr.Error())
		return
	}
	respond(w, r, http.StatusOK, resp)
}

// ResetQuiz starts the quiz over.
func (h *GameHandler) ResetQuiz(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	var view QuizView
	if !h.do(w, r, func() {
		ws.Quiz.Reset()
		view = newQuizView(ws.Quiz)
	}) {
		return
	}
	respond(w, r, http.StatusOK, view)
}

// do runs f on the event loop and writes an error response when it could not.
func (h *GameHandler) do(w http.ResponseWriter, r *http.Request, f func()) bool {
	if err := h.loop.Do(r.Context(), f); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "game loop unavailable")
		return false
	}
	return true
}

func newQuizView(q *quiz.Quiz) QuizView {
	view := QuizView{State: q.State(), Total: q.Total()}
	if current, ok := q.Current(); ok {
		view.Progress = q.Progress()
		view.Question = &current
		return view
	}
	summary := q.Summary()
	view.Summary = &summary
	return view
}
