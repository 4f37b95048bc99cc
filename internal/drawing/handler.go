package drawing

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/auth"
	"github.com/inamate/inamate/editor-go/internal/document"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the drawing endpoints on an authenticated router.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/drawings", h.List).Methods("GET")
	r.HandleFunc("/drawings", h.Create).Methods("POST")
	r.HandleFunc("/drawings/{drawingId}", h.Get).Methods("GET")
	r.HandleFunc("/drawings/{drawingId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/drawings/{drawingId}/shapes", h.GetShapes).Methods("GET")
	r.HandleFunc("/drawings/{drawingId}/shapes", h.PutShapes).Methods("PUT")
	r.HandleFunc("/drawings/{drawingId}/render.png", h.Render).Methods("GET")
	r.HandleFunc("/drawings/{drawingId}/hit", h.HitTest).Methods("GET")
	r.HandleFunc("/drawings/{drawingId}/index", h.Index).Methods("GET")
}

type createRequest struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Sample bool    `json:"sample"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	d, err := h.service.Create(r.Context(), userID, CreateParams{
		Name:   req.Name,
		Width:  req.Width,
		Height: req.Height,
		Sample: req.Sample,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	d, err := h.service.Get(r.Context(), mux.Vars(r)["drawingId"], userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	drawings, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawings)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.service.Delete(r.Context(), mux.Vars(r)["drawingId"], userID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetShapes(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	snap, err := h.service.Shapes(r.Context(), mux.Vars(r)["drawingId"], userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PutShapes replaces the shapes with the record array in the body.
func (h *Handler) PutShapes(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var recs []document.Record
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	snap, err := h.service.ReplaceShapes(r.Context(), mux.Vars(r)["drawingId"], userID, recs)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var buf bytes.Buffer
	if err := h.service.Render(r.Context(), mux.Vars(r)["drawingId"], userID, &buf); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y are required numbers"})
		return
	}

	hit, err := h.service.HitTest(r.Context(), mux.Vars(r)["drawingId"], userID, x, y)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hit)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	stats, err := h.service.IndexStats(r.Context(), mux.Vars(r)["drawingId"], userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrInvalidSize), errors.Is(err, ErrInvalidShapes):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrDrawingOpen):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
