// Package shapefile accepts shape documents over HTTP, keeps them on disk and
// renders record arrays to PNG.
package shapefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/geometry"
	"github.com/inamate/inamate/editor-go/internal/typeid"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxExportSize = 2 << 20
	fileExt       = ".json"
)

var ErrFileNotFound = errors.New("shape file not found")

// Renderer draws shapes onto a blank canvas and writes a PNG.
type Renderer interface {
	RenderShapes(shapes []geometry.Shape, width, height float64, w io.Writer) error
}

// UploadResponse is returned from the upload endpoint. Records that could not
// be decoded are listed in Errors and left out of the stored file.
type UploadResponse struct {
	ID     string            `json:"id"`
	URL    string            `json:"url"`
	Name   string            `json:"name"`
	Shapes []document.Record `json:"shapes"`
	Errors []string          `json:"errors"`
}

type Handler struct {
	dir      string
	renderer Renderer
}

// NewHandler creates a handler that stores files in dir.
func NewHandler(dir string, renderer Renderer) *Handler {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create shape file dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, renderer: renderer}
}

// Routes registers the public shape file endpoints.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/files/upload", h.Upload).Methods("POST")
	r.HandleFunc("/files/{fileId}", h.Download).Methods("GET")
	r.HandleFunc("/export/png", h.Export).Methods("POST")
}

// Upload handles POST /files/upload (multipart form with a "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file too large (max 10MB)"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	shapes, recErrs, err := document.Decode(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid shape document: " + err.Error()})
		return
	}

	id := typeid.NewFileID()
	if err := document.SaveFile(h.path(id), shapes); err != nil {
		slog.Error("save shape file", "error", err, "file", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save file"})
		return
	}

	resp := UploadResponse{
		ID:     id,
		URL:    "/files/" + id,
		Name:   header.Filename,
		Shapes: document.ToRecords(shapes),
		Errors: make([]string, len(recErrs)),
	}
	for i, e := range recErrs {
		resp.Errors[i] = e.Error()
	}
	slog.Info("shape file stored", "file", id, "shapes", len(shapes), "skipped", len(recErrs))

	writeJSON(w, http.StatusCreated, resp)
}

// Download serves a stored file. Files never change once written.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["fileId"]
	if err := typeid.Validate(id, typeid.PrefixFile); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	f, err := h.Open(id)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		slog.Error("open shape file", "error", err, "file", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	io.Copy(w, f)
}

// Open returns a stored file for reading.
func (h *Handler) Open(id string) (*os.File, error) {
	f, err := os.Open(h.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored file.
func (h *Handler) Delete(id string) error {
	if err := os.Remove(h.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		return err
	}
	return nil
}

func (h *Handler) path(id string) string {
	return filepath.Join(h.dir, filepath.Base(id)+fileExt)
}

// Export handles POST /export/png?width=&height= with a record array body.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	width, height := 800.0, 600.0
	if v := r.URL.Query().Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid width"})
			return
		}
		width = f
	}
	if v := r.URL.Query().Get("height"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid height"})
			return
		}
		height = f
	}

	shapes, recErrs, err := document.Decode(http.MaxBytesReader(w, r.Body, maxExportSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid shape document: " + err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderShapes(shapes, width, height, &buf); err != nil {
		slog.Warn("export failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	slog.Info("export complete", "shapes", len(shapes), "skipped", len(recErrs), "size", buf.Len())
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="drawing.png"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Skipped-Records", strconv.Itoa(len(recErrs)))
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
