package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/errors"
	"github.com/adlattice/bid-decision-engine/internal/service/decision"
)

// decideHandler exposes the decision service over plain JSON. One bid
// opportunity in, one priced decision out.
type decideHandler struct {
	svc    decision.Service
	logger *slog.Logger
}

func newDecideHandler(svc decision.Service, logger *slog.Logger) *decideHandler {
	return &decideHandler{svc: svc, logger: logger}
}

func (h *decideHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var bctx bid.BidContext
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&bctx); err != nil {
		writeError(w, errors.NewValidationError("INVALID_BODY", "malformed bid context"))
		return
	}

	d, err := h.svc.Decide(r.Context(), bctx)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "decision failed",
			"campaign_id", bctx.CampaignID, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d); err != nil {
		h.logger.ErrorContext(r.Context(), "encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.GetStatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]string{"error": err.Error()}
	if appErr, ok := err.(*errors.AppError); ok {
		body["code"] = appErr.Code
		body["error"] = appErr.Message
	}
	json.NewEncoder(w).Encode(body)
}
