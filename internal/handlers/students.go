package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

func (h *Handler) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var student models.Student
	if err := decodeBody(r, &student); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.CreateStudent(r.Context(), &student); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *Handler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.GetStudent(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *Handler) HandleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var student models.Student
	if err := decodeBody(r, &student); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.UpdateStudent(r.Context(), r.PathValue("id"), &student); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *Handler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Debug.Printf("Student %s deleted via API", id)
	w.WriteHeader(http.StatusNoContent)
}
