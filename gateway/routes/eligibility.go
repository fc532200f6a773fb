package routes

import (
	"errors"
	"math"
	"net/http"

	"kleotrust/services/trustd"
)

func (h *handlers) listTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tiers": h.svc.Tiers()})
}

func (h *handlers) evaluateEligibility(w http.ResponseWriter, r *http.Request) {
	var req trustd.EligibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		writeJSONError(w, http.StatusBadRequest, errors.New("amount must be finite"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Evaluate(req))
}
