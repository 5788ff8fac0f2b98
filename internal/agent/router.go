package agent

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mwantia/nfosync/pkg/db/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *NfoSyncAgent) newRouter() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/scans/last", a.handleLastScan).Methods(http.MethodGet)

	return r
}

func (a *NfoSyncAgent) handleHealth(w http.ResponseWriter, r *http.Request) {
	catalog, err := resolve[store.CatalogStore](r.Context(), a.sc)
	if err == nil {
		err = catalog.Health(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *NfoSyncAgent) handleLastScan(w http.ResponseWriter, r *http.Request) {
	a.mutex.RLock()
	report, lastErr := a.lastReport, a.lastError
	a.mutex.RUnlock()

	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no scan has finished yet"})
		return
	}

	body := map[string]any{"report": report}
	if lastErr != nil {
		body["error"] = lastErr.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
