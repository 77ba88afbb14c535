package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/washb22/gunghabnote/internal/compat"
	"github.com/washb22/gunghabnote/internal/mindreader"
)

type analyzeResponse struct {
	Success bool `json:"success"`
	*compat.Result
}

type mindReadingResponse struct {
	Success bool `json:"success"`
	*mindreader.Reading
}

// handleAnalyze answers 400 only for invalid input. Upstream failures come
// back as 200 with fallback set.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeJSON(r, &raw); err != nil {
		respondError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	req, err := compat.DecodeRequest(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, compat.ErrMissingFields.Error())
		return
	}

	if h.analyzer == nil {
		h.internalError(w, "analyzer is not configured", errors.New("nil analyzer"))
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if errors.Is(err, compat.ErrMissingFields) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.internalError(w, "analyze failed", err)
		return
	}

	h.logger.Info("compatibility analyzed",
		zap.Int("percentage", result.Percentage),
		zap.Bool("fallback", result.Fallback),
	)

	respondJSON(w, http.StatusOK, analyzeResponse{Success: true, Result: result})
}

func (h *Handler) handleMindReading(w http.ResponseWriter, r *http.Request) {
	var req mindreader.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	reading, err := h.reader.Read(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, mindReadingResponse{Success: true, Reading: reading})
}
