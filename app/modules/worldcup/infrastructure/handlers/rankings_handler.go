package worldcuphandlers

import (
	"net/http"
	"strconv"

	worldcupservice "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/application"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type rankingsResponse struct {
	Rankings []worldcupservice.RankingEntry `json:"rankings"`
}

func (h *WorldcupHandlers) HandleRankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := h.service.GetRankings(ctx, limit)
	if err != nil {
		h.writeError(ctx, w, "Listing rankings failed", err)
		return
	}
	writeJSON(w, http.StatusOK, rankingsResponse{Rankings: entries})
}

func (h *WorldcupHandlers) HandleRankingsXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleRankingsXLSX")
	defer span.End()

	entries, err := h.service.GetRankings(ctx, 0)
	if err != nil {
		h.writeError(ctx, w, "Listing rankings failed", err)
		return
	}
	data, err := buildRankingsWorkbook(entries)
	if err != nil {
		span.RecordError(err)
		h.writeError(ctx, w, "Building rankings workbook failed", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="worldcup-rankings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *WorldcupHandlers) HandleRankingsChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleRankingsChart")
	defer span.End()

	entries, err := h.service.GetRankings(ctx, chartTopN)
	if err != nil {
		h.writeError(ctx, w, "Listing rankings failed", err)
		return
	}
	data, err := renderRankingsChart(entries)
	if err != nil {
		span.RecordError(err)
		h.writeError(ctx, w, "Rendering rankings chart failed", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
