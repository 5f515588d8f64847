package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/atlasindex/atlas/internal/store"
)

// handlers holds the dependencies every route needs: a store handle and
// a logger. It is intentionally thin — spec §1 scopes the query façade
// out of the core; these handlers exist only to prove the store contract
// end to end.
type handlers struct {
	store  *store.Store
	logger zerolog.Logger
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// explorerLatest returns the most recently materialized ExplorerRow.
// Per spec §7 "no data yet" surfaces as a 500 with an explanatory
// message, not a 404 — the façade is not expected to distinguish "never
// indexed" from any other backend failure.
func (h *handlers) explorerLatest(w http.ResponseWriter, r *http.Request) {
	row, ok, err := h.store.LatestExplorerRow(r.Context(), store.ExplorerKindDerived)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "explorer row lookup failed: "+err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusInternalServerError, "no data yet")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// walletBalance returns the latest WalletBalance for a (ticker, wallet)
// pair (spec §3 WalletBalance).
func (h *handlers) walletBalance(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	wallet := chi.URLParam(r, "wallet")

	bal, ok, err := h.store.LatestWalletBalance(r.Context(), ticker, wallet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "wallet balance lookup failed: "+err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusInternalServerError, "no data yet")
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

// cursor returns the current CursorState for a stream label, so an
// operator can check ingestion progress without a ClickHouse client.
func (h *handlers) cursor(w http.ResponseWriter, r *http.Request) {
	stream := chi.URLParam(r, "stream")

	cs, err := h.store.LoadCursor(r.Context(), stream)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no data yet")
		return
	}
	writeJSON(w, http.StatusOK, cs)
}
