package worldcuphandlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	worldcupservice "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/application"
	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

type sizesResponse struct {
	Sizes []int `json:"sizes"`
}

type startRequest struct {
	Size int `json:"size"`
}

type decideRequest struct {
	WinnerID worldcupdomain.CompetitorID `json:"winner_id"`
}

// sessionView is what the play screen needs to render one step of a bracket.
type sessionView struct {
	Key          string                     `json:"key"`
	RoundLabel   string                     `json:"round_label"`
	CurrentRound int                        `json:"current_round"`
	MatchIndex   int                        `json:"match_index"`
	CurrentMatch *worldcupdomain.Match      `json:"current_match,omitempty"`
	TotalRounds  int                        `json:"total_rounds"`
	Complete     bool                       `json:"complete"`
	Winner       *worldcupdomain.Competitor `json:"winner,omitempty"`
	Rounds       []worldcupdomain.Round     `json:"rounds"`
}

type decisionView struct {
	Session     sessionView                  `json:"session"`
	Match       worldcupdomain.Match         `json:"match"`
	Rating      *worldcupdomain.RatingChange `json:"rating,omitempty"`
	RatingError string                       `json:"rating_error,omitempty"`
	Completed   bool                         `json:"completed"`
	Champion    *worldcupdomain.Competitor   `json:"champion,omitempty"`
}

func newSessionView(s *worldcupservice.Session) sessionView {
	state := s.State
	view := sessionView{
		Key:          s.Key,
		RoundLabel:   state.RoundLabel(),
		CurrentRound: state.CurrentRound,
		MatchIndex:   state.CurrentMatch,
		TotalRounds:  state.TotalRounds,
		Complete:     state.IsComplete(),
		Rounds:       state.Rounds,
	}
	if m, ok := state.PendingMatch(); ok {
		view.CurrentMatch = &m
	}
	if w, ok := state.Winner(); ok {
		view.Winner = &w
	}
	return view
}

func (h *WorldcupHandlers) HandleSizes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sizes, err := h.service.AvailableSizes(ctx)
	if err != nil {
		h.writeError(ctx, w, "Listing sizes failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sizesResponse{Sizes: sizes})
}

func (h *WorldcupHandlers) HandleStartTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.service.StartTournament(ctx, req.Size)
	if err != nil {
		h.writeError(ctx, w, "Starting tournament failed", err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("%s/%s", strings.TrimSuffix(r.URL.Path, "/"), session.Key))
	writeJSON(w, http.StatusCreated, newSessionView(session))
}

func (h *WorldcupHandlers) HandleGetTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.service.GetTournament(ctx, chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(ctx, w, "Loading tournament failed", err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(session))
}

func (h *WorldcupHandlers) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleDecide")
	defer span.End()

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WinnerID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "winner_id is required"})
		return
	}

	result, err := h.service.Decide(ctx, chi.URLParam(r, "key"), req.WinnerID)
	if err != nil {
		span.RecordError(err)
		h.writeError(ctx, w, "Deciding match failed", err)
		return
	}
	writeJSON(w, http.StatusOK, decisionView{
		Session:     newSessionView(result.Session),
		Match:       result.Match,
		Rating:      result.Rating,
		RatingError: result.RatingError,
		Completed:   result.Completed,
		Champion:    result.Champion,
	})
}

func (h *WorldcupHandlers) HandleAbandonTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.AbandonTournament(ctx, chi.URLParam(r, "key")); err != nil {
		h.writeError(ctx, w, "Abandoning tournament failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
