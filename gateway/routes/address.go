package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (h *handlers) describeAddress(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.Describe(chi.URLParam(r, "address"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *handlers) matchAddresses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	network := strings.TrimSpace(query.Get("network"))
	short := strings.TrimSpace(query.Get("short"))
	if network == "" || short == "" {
		writeJSONError(w, http.StatusBadRequest, errors.New("network and short query parameters required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"match": h.svc.Match(network, short)})
}
