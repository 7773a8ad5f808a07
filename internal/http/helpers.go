package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jizhang/internal/core"
)

// parseYearMonth extracts year and month from query parameters,
// defaulting to the current period in the calendar's zone.
func (s *Server) parseYearMonth(r *http.Request) (year, month int) {
	today := s.cal.Today()
	year, month = today.Year, today.Month

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	return year, month
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func isBadRequest(err error) bool {
	return errors.Is(err, core.ErrInvalidTab) || errors.Is(err, core.ErrInvalidView)
}
