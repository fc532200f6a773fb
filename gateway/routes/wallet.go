package routes

import (
	"net/http"

	"kleotrust/wallet"
)

func (h *handlers) observeWallet(w http.ResponseWriter, r *http.Request) {
	var obs wallet.Observation
	if err := decodeJSON(w, r, &obs); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	result, session := h.svc.Tick(obs)
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  result,
		"changed": result.Changed(),
		"session": session,
	})
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Session())
}
