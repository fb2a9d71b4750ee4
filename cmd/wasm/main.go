//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/engine"
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/trace"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(trace.DefaultLimits(), trace.ModeFresnel)

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadSample", js.FuncOf(loadSample))
	api.Set("reset", js.FuncOf(reset))
	api.Set("setMode", js.FuncOf(setMode))
	api.Set("addPolygon", js.FuncOf(addPolygon))
	api.Set("addLens", js.FuncOf(addLens))
	api.Set("removeObjects", js.FuncOf(removeObjects))
	api.Set("startTransform", js.FuncOf(startTransform))
	api.Set("translate", js.FuncOf(translate))
	api.Set("rotate", js.FuncOf(rotate))
	api.Set("resize", js.FuncOf(resize))
	api.Set("endTransform", js.FuncOf(endTransform))
	api.Set("applyTransform", js.FuncOf(applyTransform))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("addToSelection", js.FuncOf(addToSelection))
	api.Set("addLight", js.FuncOf(addLight))
	api.Set("moveLight", js.FuncOf(moveLight))
	api.Set("removeLight", js.FuncOf(removeLight))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getSnapshot", js.FuncOf(getSnapshot))
	api.Set("getTrace", js.FuncOf(getTrace))
	api.Set("getPresets", js.FuncOf(getPresets))

	js.Global().Set("prismanisEngine", api)
	js.Global().Set("prismanisWasmReady", js.ValueOf(true))

	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

func created(id string, err error) interface{} {
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": id})
}

// stringSlice reads a JS array of strings. Anything else yields nil.
func stringSlice(v js.Value) []string {
	if v.Type() != js.TypeObject {
		return nil
	}
	ids := make([]string, v.Length())
	for i := range ids {
		ids[i] = v.Index(i).String()
	}
	return ids
}

func decodeArg(args []js.Value, dst interface{}) error {
	return json.Unmarshal([]byte(args[0].String()), dst)
}

// --- Command Handlers ---

func loadSample(this js.Value, args []js.Value) interface{} {
	return result(eng.LoadSample())
}

func reset(this js.Value, args []js.Value) interface{} {
	eng.Reset()
	return result(nil)
}

func setMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("mode")
	}
	eng.SetMode(trace.ParseMode(args[0].String()))
	return result(nil)
}

func addPolygon(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("polygon JSON")
	}
	var in document.PolygonInput
	if err := decodeArg(args, &in); err != nil {
		return result(err)
	}
	return created(eng.AddPolygon(in))
}

func addLens(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("lens JSON")
	}
	var in document.LensInput
	if err := decodeArg(args, &in); err != nil {
		return result(err)
	}
	return created(eng.AddLens(in))
}

func removeObjects(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("ids")
	}
	return result(eng.RemoveObjects(stringSlice(args[0])...))
}

func startTransform(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("ids")
	}
	index, err := eng.StartTransform(stringSlice(args[0]))
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "index": index})
}

func translate(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("ids, dx, dy")
	}
	return result(eng.Translate(stringSlice(args[0]), args[1].Float(), args[2].Float()))
}

func rotate(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("ids, angle")
	}
	return result(eng.Rotate(stringSlice(args[0]), args[1].Float()))
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("id, corner, width, height")
	}
	corner, ok := geom.ParseCorner(args[1].String())
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "unknown corner"})
	}
	return result(eng.Resize(args[0].String(), corner, args[2].Float(), args[3].Float()))
}

func endTransform(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("index")
	}
	return result(eng.EndTransform(args[0].Int()))
}

func applyTransform(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("transform JSON")
	}
	var in document.TransformInput
	if err := decodeArg(args, &in); err != nil {
		return result(err)
	}
	return result(eng.ApplyTransform(in))
}

func undo(this js.Value, args []js.Value) interface{} {
	return result(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return result(eng.Redo())
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return result(eng.SetSelection(nil))
	}
	return result(eng.SetSelection(stringSlice(args[0])))
}

func addToSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("ids")
	}
	return result(eng.AddToSelection(stringSlice(args[0])))
}

func addLight(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("light JSON")
	}
	var in document.LightInput
	if err := decodeArg(args, &in); err != nil {
		return result(err)
	}
	l, err := eng.AddLight(in)
	return created(l.ID, err)
}

func moveLight(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("id, x, y, angle")
	}
	pos := document.Point{X: args[1].Float(), Y: args[2].Float()}
	return result(eng.MoveLight(args[0].String(), pos, args[3].Float()))
}

func removeLight(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("id")
	}
	return result(eng.RemoveLight(args[0].String()))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getSnapshot(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSnapshot())
}

func getTrace(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetTrace())
}

func getPresets(this js.Value, args []js.Value) interface{} {
	names := trace.PresetNames()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}
