package shapefile

import (
	"bytes"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/editor-go/internal/drawing"
)

const mixedDocument = `[
  {"type":"Circle","x":20,"y":20,"rotation":0,"fillColor":"#FF0000","radius":10},
  {"type":"Hexagon","x":0,"y":0,"rotation":0,"fillColor":"#FF0000"},
  {"type":"Rectangle","x":30,"y":30,"rotation":15,"fillColor":"#00FF00","width":20,"height":10}
]`

func newTestRouter(t *testing.T) (*mux.Router, *Handler) {
	t.Helper()
	h := NewHandler(t.TempDir(), drawing.NewService(drawing.NewMemoryStore()))
	r := mux.NewRouter()
	h.Routes(r)
	return r, h
}

func upload(t *testing.T, r http.Handler, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "shapes.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadKeepsValidRecords(t *testing.T) {
	r, h := newTestRouter(t)

	rec := upload(t, r, mixedDocument)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ID, "file_"))
	assert.Equal(t, "shapes.json", resp.Name)
	require.Len(t, resp.Shapes, 2)
	assert.Equal(t, "Circle", resp.Shapes[0].Type)
	assert.Equal(t, "Rectangle", resp.Shapes[1].Type)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "record 1")

	get := httptest.NewRecorder()
	r.ServeHTTP(get, httptest.NewRequest(http.MethodGet, resp.URL, nil))
	require.Equal(t, http.StatusOK, get.Code)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &stored))
	assert.Len(t, stored, 2)

	require.NoError(t, h.Delete(resp.ID))
	assert.ErrorIs(t, h.Delete(resp.ID), ErrFileNotFound)

	get = httptest.NewRecorder()
	r.ServeHTTP(get, httptest.NewRequest(http.MethodGet, resp.URL, nil))
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestUploadRejectsBadInput(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, upload(t, r, `{"not":"an array"}`).Code)

	req := httptest.NewRequest(http.MethodPost, "/files/upload", strings.NewReader("plain"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/not-a-file-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportPNG(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/export/png?width=40&height=30", strings.NewReader(mixedDocument))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Skipped-Records"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	req = httptest.NewRequest(http.MethodPost, "/export/png?width=-5", strings.NewReader(`[]`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/export/png?width=abc", strings.NewReader(`[]`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
