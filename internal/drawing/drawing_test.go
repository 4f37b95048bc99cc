package drawing

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/editor-go/internal/auth"
	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/geometry"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), WithDefaultSize(200, 100))
}

func TestCreateAndOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	d, err := svc.Create(ctx, "user_a", CreateParams{Name: "first"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d.ID, "drw_"))
	assert.Equal(t, 200.0, d.Width)
	assert.Equal(t, 1, d.Version)

	_, err = svc.Create(ctx, "user_a", CreateParams{Name: "huge", Width: 1e6, Height: 10})
	assert.ErrorIs(t, err, ErrInvalidSize)

	got, err := svc.Get(ctx, d.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	_, err = svc.Get(ctx, d.ID, "user_b")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, "drw_missing", "user_a")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx, "user_a")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.List(ctx, "user_b")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.Delete(ctx, d.ID, "user_b"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, d.ID, "user_a"))
	_, err = svc.Get(ctx, d.ID, "user_a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShapesAndReplace(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	d, err := svc.Create(ctx, "user_a", CreateParams{Name: "sample", Sample: true})
	require.NoError(t, err)

	snap, err := svc.Shapes(ctx, d.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Version)
	assert.Len(t, snap.Shapes, len(document.SampleShapes()))

	recs := document.ToRecords([]geometry.Shape{geometry.NewCircle(20, 20, 10, geometry.Red)})
	snap, err = svc.ReplaceShapes(ctx, d.ID, "user_a", recs)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Version)

	snap, err = svc.Shapes(ctx, d.ID, "user_a")
	require.NoError(t, err)
	require.Len(t, snap.Shapes, 1)
	assert.Equal(t, "Circle", snap.Shapes[0].Type)

	got, err := svc.Get(ctx, d.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)

	_, err = svc.ReplaceShapes(ctx, d.ID, "user_a", []document.Record{{Type: "Blob", FillColor: "#000000"}})
	assert.ErrorIs(t, err, ErrInvalidShapes)
	var recErr *document.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 0, recErr.Index)

	_, err = svc.ReplaceShapes(ctx, d.ID, "user_a", []document.Record{recs[0], {
		Type: "Polygon", FillColor: "#000000",
		PointsX: []float64{0, 5}, PointsY: []float64{0, 5}, NumPoints: 2,
	}})
	assert.ErrorIs(t, err, ErrInvalidShapes)
	assert.ErrorIs(t, err, geometry.ErrTooFewPoints)
	snap, err = svc.Shapes(ctx, d.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Version)

	svc.SetLive(func(id string) ([]geometry.Shape, bool) { return nil, id == d.ID })
	_, err = svc.ReplaceShapes(ctx, d.ID, "user_a", recs)
	assert.ErrorIs(t, err, ErrDrawingOpen)
}

func TestHitTestUsesTopmostShape(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	d, err := svc.Create(ctx, "user_a", CreateParams{Name: "hits"})
	require.NoError(t, err)

	_, err = svc.ReplaceShapes(ctx, d.ID, "user_a", document.ToRecords([]geometry.Shape{
		geometry.NewRectangle(10, 10, 100, 50, geometry.Green),
		geometry.NewCircle(50, 30, 15, geometry.Red),
	}))
	require.NoError(t, err)

	hit, err := svc.HitTest(ctx, d.ID, "user_a", 50, 30)
	require.NoError(t, err)
	require.True(t, hit.Hit)
	assert.Equal(t, 1, hit.Index)
	assert.Equal(t, "Circle", hit.Shape.Type)

	hit, err = svc.HitTest(ctx, d.ID, "user_a", 100, 55)
	require.NoError(t, err)
	assert.Equal(t, 0, hit.Index)

	hit, err = svc.HitTest(ctx, d.ID, "user_a", 190, 90)
	require.NoError(t, err)
	assert.False(t, hit.Hit)
	assert.Equal(t, -1, hit.Index)
	assert.Nil(t, hit.Shape)

	// live state wins over the stored snapshot
	svc.SetLive(func(string) ([]geometry.Shape, bool) {
		return []geometry.Shape{geometry.NewCircle(190, 90, 5, geometry.Blue)}, true
	})
	hit, err = svc.HitTest(ctx, d.ID, "user_a", 190, 90)
	require.NoError(t, err)
	assert.True(t, hit.Hit)

	stats, err := svc.IndexStats(ctx, d.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Shapes)
	assert.Equal(t, 1, stats.Rebuilds)
}

func TestRenderPNG(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	d, err := svc.Create(ctx, "user_a", CreateParams{Name: "png", Width: 64, Height: 48})
	require.NoError(t, err)
	_, err = svc.ReplaceShapes(ctx, d.ID, "user_a", document.ToRecords([]geometry.Shape{
		geometry.NewRectangle(0, 0, 32, 48, geometry.Red),
	}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Render(ctx, d.ID, "user_a", &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	r, g, b, _ := img.At(10, 24).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
	r, g, b, _ = img.At(50, 24).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestCollabStore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	w, h, shapes, err := svc.LoadCanvas(ctx, PlaygroundID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 100.0, h)
	assert.NotEmpty(t, shapes)
	require.NoError(t, svc.SaveCanvas(ctx, PlaygroundID, nil))
	require.NoError(t, svc.CanOpen(ctx, PlaygroundID, ""))

	d, err := svc.Create(ctx, "user_a", CreateParams{Name: "live", Width: 300, Height: 150})
	require.NoError(t, err)
	require.NoError(t, svc.CanOpen(ctx, d.ID, "user_a"))
	assert.ErrorIs(t, svc.CanOpen(ctx, d.ID, "user_b"), ErrForbidden)

	require.NoError(t, svc.SaveCanvas(ctx, d.ID, []geometry.Shape{geometry.NewCircle(5, 5, 5, geometry.Blue)}))
	w, h, shapes, err = svc.LoadCanvas(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, w)
	assert.Equal(t, 150.0, h)
	require.Len(t, shapes, 1)
	assert.Equal(t, geometry.KindCircle, shapes[0].Kind())

	_, _, _, err = svc.LoadCanvas(ctx, "drw_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoredBadRecordsAreSkipped(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	svc := newTestService()
	d, err := svc.Create(ctx, "user_a", CreateParams{Name: "legacy"})
	require.NoError(t, err)

	_, err = svc.store.CreateSnapshot(ctx, d.ID, []document.Record{
		{Type: "Polygon", FillColor: "#000000", PointsX: []float64{10, 20}, PointsY: []float64{10, 20}, NumPoints: 2},
		{Type: "Rectangle", X: 10, Y: 10, FillColor: "#00FF00", Width: 20, Height: 20},
	})
	require.NoError(t, err)

	_, _, shapes, err := svc.LoadCanvas(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, geometry.KindRectangle, shapes[0].Kind())

	hit, err := svc.HitTest(ctx, d.ID, "user_a", 15, 15)
	require.NoError(t, err)
	assert.True(t, hit.Hit)
	assert.Equal(t, 0, hit.Index)

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, "skip stored shape record"))
	assert.Contains(t, out, "drawing_id="+d.ID)
}

func newTestRouter(svc *Service, userID string) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	NewHandler(svc).Routes(api)
	return r
}

func TestHandlerRoutes(t *testing.T) {
	svc := newTestService()
	router := newTestRouter(svc, "user_a")

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, do("POST", "/api/drawings", `{}`).Code)

	rec := do("POST", "/api/drawings", `{"name":"doc","width":120,"height":80}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var d Drawing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	base := "/api/drawings/" + d.ID

	assert.Equal(t, http.StatusOK, do("GET", "/api/drawings", "").Code)
	assert.Equal(t, http.StatusOK, do("GET", base, "").Code)
	assert.Equal(t, http.StatusNotFound, do("GET", "/api/drawings/drw_missing", "").Code)

	rec = do("PUT", base+"/shapes", `[{"type":"Circle","x":40,"y":40,"rotation":0,"fillColor":"#0000FF","radius":10}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, do("PUT", base+"/shapes", `[{"type":"Circle","fillColor":"#0000FF","radius":-1}]`).Code)
	assert.Equal(t, http.StatusBadRequest, do("PUT", base+"/shapes", `nope`).Code)

	rec = do("GET", base+"/shapes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.Version)

	rec = do("GET", base+"/hit?x=40&y=45", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hit Hit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hit))
	assert.True(t, hit.Hit)
	assert.Equal(t, http.StatusBadRequest, do("GET", base+"/hit?x=1", "").Code)

	rec = do("GET", base+"/render.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	require.NoError(t, err)

	rec = do("GET", base+"/index", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"shapes":1`)

	other := newTestRouter(svc, "user_b")
	req := httptest.NewRequest("DELETE", base, nil)
	rec = httptest.NewRecorder()
	other.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, http.StatusNoContent, do("DELETE", base, "").Code)
	assert.Equal(t, http.StatusNotFound, do("GET", base, "").Code)
}
