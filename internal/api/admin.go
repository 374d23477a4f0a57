package api

import "net/http"

// handleMLStatus reports the currently active model and aggregate counters
// backing the administrative dashboard.
func (s *Server) handleMLStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.admin.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleMLVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.admin.Versions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleMLTrainingLogs(w http.ResponseWriter, r *http.Request) {
	limit := limitFromQuery(r, defaultHallOfFameLimit)
	logs, err := s.admin.TrainingLogs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleMLEdgeCases(w http.ResponseWriter, r *http.Request) {
	limit := limitFromQuery(r, defaultHallOfFameLimit)
	cases, err := s.admin.EdgeCases(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// handleMLTrain forces an out-of-band training run, bypassing the
// scheduler's edge-case threshold and cooldown (operator override).
func (s *Server) handleMLTrain(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Train(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "training started"})
}
