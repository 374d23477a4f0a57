package api

import (
	"net/http"
	"strconv"
)

const (
	defaultHallOfFameLimit = 10
	defaultHallOfShameLimit = 50
)

// limitFromQuery reads the `limit` query parameter, falling back to def when
// it is absent or not a positive integer.
func limitFromQuery(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := limitFromQuery(r, defaultHallOfFameLimit)
	entries, err := s.admin.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCheatLog(w http.ResponseWriter, r *http.Request) {
	limit := limitFromQuery(r, defaultHallOfShameLimit)
	records, err := s.admin.CheatLog(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}
