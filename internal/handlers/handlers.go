package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/app"
	"github.com/shrimpsizemoose/betyg/internal/metrics"
	"github.com/shrimpsizemoose/betyg/internal/models"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Register wires every route onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"GET /api/v1/levels":                                 h.HandleLevels,
		"GET /api/v1/levels/{level}/tracks/{track}/subjects": h.HandleSubjects,
		"GET /api/v1/levels/{level}/tracks/{track}/ranking":  h.HandleRanking,
		"GET /api/v1/levels/{level}/tracks/{track}/students": h.HandleCohortStudents,
		"POST /api/v1/students":                              h.HandleCreateStudent,
		"GET /api/v1/students/{id}":                          h.HandleGetStudent,
		"PUT /api/v1/students/{id}":                          h.HandleUpdateStudent,
		"DELETE /api/v1/students/{id}":                       h.HandleDeleteStudent,
		"PUT /api/v1/students/{id}/grades":                   h.HandleSubmitGrades,
		"GET /api/v1/students/{id}/grades":                   h.HandleListGrades,
		"GET /api/v1/students/{id}/result":                   h.HandleResult,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, h.instrument(pattern, fn))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument times the request and enforces the required headers.
func (h *Handler) instrument(pattern string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			duration := time.Since(start).Seconds()
			metrics.APIRequestDuration.WithLabelValues(
				pattern,
				r.Method,
				strconv.Itoa(rec.status),
			).Observe(duration)
		}()

		if !h.service.ValidateHeaders(r.Header) {
			http.Error(rec, "these are not the droids you are looking for", http.StatusForbidden)
			return
		}

		next(rec, r)
	})
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto status codes. Anything unexpected is
// logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *models.ValidationError
	var notFound *models.NotFoundError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: validation.Fields})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Debug.Printf("Invalid request body for %s: %v", r.URL.Path, err)
		return models.Invalid("body", "invalid JSON: %v", err)
	}
	return nil
}
