package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/app"
	"github.com/shrimpsizemoose/markbook/internal/metrics"
	"github.com/shrimpsizemoose/markbook/internal/models"
	"github.com/shrimpsizemoose/markbook/internal/scoring"
)

type baselineRequest struct {
	Session string `json:"session" validate:"max=64"`
	Mark    string `json:"mark" validate:"required,max=32"`
}

type recalculateRequest struct {
	Session       string       `json:"session" validate:"max=64"`
	DepthEncoding string       `json:"depth_encoding" validate:"omitempty,oneof=labelled indented"`
	Rows          []models.Row `json:"rows" validate:"required,dive"`
}

type structureErrorResponse struct {
	Error         string `json:"error"`
	Position      int    `json:"position"`
	Discriminator string `json:"discriminator"`
}

type MarkbookHandler struct {
	service  *app.Service
	validate *validator.Validate
}

func NewMarkbookHandler(service *app.Service) *MarkbookHandler {
	return &MarkbookHandler{
		service:  service,
		validate: validator.New(),
	}
}

// Register mounts the markbook routes on mux.
func (h *MarkbookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/{course}/baseline", h.instrument(h.HandleBaseline))
	mux.HandleFunc("POST /api/v1/{course}/recalculate", h.instrument(h.HandleRecalculate))
	mux.HandleFunc("GET /api/v1/{course}/markbook", h.instrument(h.HandleStoredMarkbook))
	mux.HandleFunc("GET /api/v1/summary", h.instrument(h.HandleSummary))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *MarkbookHandler) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			metrics.APIRequestDuration.WithLabelValues(
				r.Pattern,
				r.Method,
				strconv.Itoa(rec.status),
			).Observe(time.Since(start).Seconds())
		}()
		next(rec, r)
	}
}

func (h *MarkbookHandler) HandleBaseline(w http.ResponseWriter, r *http.Request) {
	course := r.PathValue("course")
	if course == "" {
		logger.Error.Printf("Failed to extract course from path: %s", r.URL.Path)
		http.Error(w, "Invalid course", http.StatusBadRequest)
		return
	}

	var req baselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.service.CaptureBaseline(r.Context(), req.Session, course, req.Mark)
	if err != nil {
		logger.Error.Printf("Failed to capture baseline for %s: %v", course, err)
		http.Error(w, "Failed to capture baseline", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"session": session,
		"course":  course,
	})
}

func (h *MarkbookHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	course := r.PathValue("course")
	if course == "" {
		logger.Error.Printf("Failed to extract course from path: %s", r.URL.Path)
		http.Error(w, "Invalid course", http.StatusBadRequest)
		return
	}

	var req recalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Recalculate(r.Context(), req.Session, course, req.DepthEncoding, req.Rows)
	if err != nil {
		h.writeError(w, course, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *MarkbookHandler) HandleStoredMarkbook(w http.ResponseWriter, r *http.Request) {
	course := r.PathValue("course")
	if course == "" {
		logger.Error.Printf("Failed to extract course from path: %s", r.URL.Path)
		http.Error(w, "Invalid course", http.StatusBadRequest)
		return
	}

	result, err := h.service.RecalculateStored(r.Context(), r.URL.Query().Get("session"), course)
	if err != nil {
		h.writeError(w, course, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *MarkbookHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		h.writeError(w, "summary", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *MarkbookHandler) writeError(w http.ResponseWriter, course string, err error) {
	var serr *scoring.StructureError
	switch {
	case errors.As(err, &serr):
		writeJSON(w, http.StatusBadRequest, structureErrorResponse{
			Error:         serr.Reason,
			Position:      serr.Position,
			Discriminator: serr.Discriminator,
		})
	case errors.Is(err, app.ErrCourseNotFound):
		http.Error(w, "Course not found", http.StatusNotFound)
	case errors.Is(err, app.ErrNoRowSource):
		http.Error(w, "No markbook database configured", http.StatusServiceUnavailable)
	default:
		logger.Error.Printf("Failed to recalculate %s: %v", course, err)
		http.Error(w, "Failed to recalculate markbook", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
