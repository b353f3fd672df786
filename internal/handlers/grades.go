package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

type subjectScores struct {
	SubjectID int      `json:"subject_id"`
	CC        *float64 `json:"cc"`
	Exam      *float64 `json:"exam"`
}

// termSheet is the body of a grade submission: one term, many subjects.
type termSheet struct {
	Term   models.Term     `json:"term"`
	Grades []subjectScores `json:"grades"`
}

func (h *Handler) HandleSubmitGrades(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var sheet termSheet
	if err := decodeBody(r, &sheet); err != nil {
		writeError(w, r, err)
		return
	}

	entries := make([]models.GradeEntry, 0, len(sheet.Grades))
	for _, g := range sheet.Grades {
		entries = append(entries, models.GradeEntry{
			Student:   id,
			SubjectID: g.SubjectID,
			Term:      sheet.Term,
			CC:        g.CC,
			Exam:      g.Exam,
		})
	}

	if err := h.service.SubmitGrades(r.Context(), id, entries); err != nil {
		writeError(w, r, err)
		return
	}

	lines, err := h.service.StudentGrades(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stored": len(entries),
		"grades": lines,
	})
}

func (h *Handler) HandleListGrades(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.StudentGrades(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"grades": lines,
	})
}

func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.StudentResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
