package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"komunalka/internal/core"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// queryPeriod reads ?period=YYYY-MM, defaulting to the current month.
func queryPeriod(r *http.Request) (core.Period, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		return core.CurrentPeriod(time.Now()), nil
	}
	return core.ParsePeriod(raw)
}

// queryApartmentID reads the required ?apartment_id parameter.
func queryApartmentID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.URL.Query().Get("apartment_id"))
	return id, id != ""
}
