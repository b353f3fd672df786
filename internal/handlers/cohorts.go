package handlers

import (
	"net/http"
)

func (h *Handler) HandleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"levels": h.service.Levels(),
	})
}

func (h *Handler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.Subjects(r.PathValue("level"), r.PathValue("track"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subjects": subjects,
	})
}

func (h *Handler) HandleCohortStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListStudents(r.PathValue("level"), r.PathValue("track"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
	})
}

func (h *Handler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	level, track := r.PathValue("level"), r.PathValue("track")

	ranking, err := h.service.CohortRanking(r.Context(), level, track)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"level":   level,
		"track":   track,
		"ranking": ranking,
	})
}
