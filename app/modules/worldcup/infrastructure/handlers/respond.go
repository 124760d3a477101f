package worldcuphandlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	worldcupservice "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/application"
	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, worldcupservice.ErrSessionNotFound),
		errors.Is(err, worldcupservice.ErrCompetitorNotFound):
		return http.StatusNotFound
	case errors.Is(err, worldcupdomain.ErrInvalidBracketSize),
		errors.Is(err, worldcupservice.ErrSizeNotOffered),
		errors.Is(err, worldcupdomain.ErrWinnerNotInMatch),
		errors.Is(err, worldcupdomain.ErrTournamentComplete),
		errors.Is(err, worldcupservice.ErrSameCompetitor):
		return http.StatusBadRequest
	case errors.Is(err, worldcupdomain.ErrPoolTooSmall),
		errors.Is(err, worldcupservice.ErrSessionConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *WorldcupHandlers) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, slog.Any("error", err))
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	h.logger.WarnContext(ctx, msg, slog.Int("status", status), slog.Any("error", err))
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
