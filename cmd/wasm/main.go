//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/segmentio/encoding/json"

	"github.com/inamate/inamate/editor-go/internal/document"
	"github.com/inamate/inamate/editor-go/internal/editor"
	"github.com/inamate/inamate/editor-go/internal/geometry"
	"github.com/inamate/inamate/editor-go/internal/render"
)

var (
	ed  *editor.Editor
	rec = render.NewRecorder()
)

func main() {
	ed = editor.New(800, 600)

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → editor) ---
	api.Set("init", js.FuncOf(initCanvas))
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("press", js.FuncOf(press))
	api.Set("drag", js.FuncOf(drag))
	api.Set("release", js.FuncOf(release))
	api.Set("key", js.FuncOf(key))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setColor", js.FuncOf(setColor))
	api.Set("setPolygonSides", js.FuncOf(setPolygonSides))
	api.Set("finishPolygon", js.FuncOf(finishPolygon))
	api.Set("markAll", js.FuncOf(markAll))

	// --- Queries (frontend ← editor) ---
	api.Set("render", js.FuncOf(renderFrame))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("getStats", js.FuncOf(getStats))

	js.Global().Set("shapeEditor", api)
	js.Global().Set("shapeEditorReady", js.ValueOf(true))

	select {}
}

func ok() any { return js.ValueOf(map[string]any{"ok": true}) }

func fail(err error) any { return js.ValueOf(map[string]any{"error": err.Error()}) }

func point(args []js.Value) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	return args[0].Float(), args[1].Float(), true
}

// --- Command Handlers ---

func initCanvas(this js.Value, args []js.Value) any {
	w, h, valid := point(args)
	if !valid || w <= 0 || h <= 0 {
		return js.ValueOf(map[string]any{"error": "width and height required"})
	}
	ed = editor.New(w, h)
	return ok()
}

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document JSON"})
	}
	shapes, recErrs, err := document.Unmarshal([]byte(args[0].String()))
	if err != nil {
		return fail(err)
	}
	ed.Load(shapes)

	skipped := make([]any, len(recErrs))
	for i, e := range recErrs {
		skipped[i] = e.Error()
	}
	return js.ValueOf(map[string]any{"ok": true, "loaded": len(shapes), "skipped": skipped})
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	ed.Load(document.SampleShapes())
	return ok()
}

func press(this js.Value, args []js.Value) any {
	x, y, valid := point(args)
	if !valid {
		return nil
	}
	if err := ed.Press(x, y); err != nil {
		return fail(err)
	}
	return ok()
}

func drag(this js.Value, args []js.Value) any {
	if x, y, valid := point(args); valid {
		ed.Drag(x, y)
	}
	return nil
}

func release(this js.Value, args []js.Value) any {
	x, y, valid := point(args)
	if !valid {
		return nil
	}
	id, created := ed.Release(x, y)
	if !created {
		return js.ValueOf(map[string]any{"created": false})
	}
	return js.ValueOf(map[string]any{"created": true, "id": id.String()})
}

func key(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	shift := len(args) > 1 && args[1].Truthy()
	return js.ValueOf(ed.Key(editor.ParseKey(args[0].String()), shift))
}

func setTool(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	t, known := editor.ParseTool(args[0].String())
	if !known {
		return js.ValueOf(map[string]any{"error": "unknown tool"})
	}
	ed.SetTool(t)
	return ok()
}

func setColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	c, err := geometry.ParseColor(args[0].String())
	if err != nil {
		return fail(err)
	}
	ed.SetColor(c)
	return ok()
}

func setPolygonSides(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	ed.SetPolygonSides(args[0].Int())
	return js.ValueOf(ed.PolygonSides())
}

func finishPolygon(this js.Value, args []js.Value) any {
	id, err := ed.FinishPolygon()
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id.String()})
}

func markAll(this js.Value, args []js.Value) any {
	ed.MarkAll()
	return nil
}

// --- Query Handlers ---

// renderFrame returns the draw commands for the dirty region as JSON, or an
// empty string when nothing changed.
func renderFrame(this js.Value, args []js.Value) any {
	if _, dirty := ed.DirtyRegion(); !dirty {
		return js.ValueOf("")
	}
	rec.Reset()
	ed.Redraw(rec)
	out, err := rec.JSON()
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(out)
}

func hitTest(this js.Value, args []js.Value) any {
	x, y, valid := point(args)
	if !valid {
		return js.ValueOf(-1)
	}
	id, hit := ed.HitTest(x, y)
	if !hit {
		return js.ValueOf(-1)
	}
	return js.ValueOf(ed.ZIndex(id))
}

func getDocument(this js.Value, args []js.Value) any {
	data, err := document.Marshal(ed.Snapshot())
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}

func getStats(this js.Value, args []js.Value) any {
	data, err := json.Marshal(ed.Stats())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}
