package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
)

func f32bytes(vs ...float32) []byte {
	buf := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func dataURI(b []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b)
}

// buildGLB packs a JSON document and an optional binary chunk into a GLB container.
func buildGLB(t *testing.T, doc any, bin []byte) []byte {
	t.Helper()

	js, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	total := 12 + 8 + len(js)
	if len(bin) > 0 {
		total += 8 + len(bin)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, glbHeader{Magic: glbMagic, Version: glbVersion, Length: uint32(total)})
	binary.Write(&out, binary.LittleEndian, glbChunkHeader{Length: uint32(len(js)), Type: glbChunkJSON})
	out.Write(js)
	if len(bin) > 0 {
		binary.Write(&out, binary.LittleEndian, glbChunkHeader{Length: uint32(len(bin)), Type: glbChunkBIN})
		out.Write(bin)
	}
	return out.Bytes()
}

// trianglePositions winds counter-clockwise when seen from +Y.
var trianglePositions = f32bytes(0, 0, 0, 0, 0, 1, 1, 0, 0)

// triangleDocument describes one indexed triangle whose positions start the buffer, followed by indexBytes of indices.
func triangleDocument(buffer map[string]any, indexComponent componentType, indexBytes int) map[string]any {
	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"name": "tri", "nodes": []int{0}}},
		"nodes":  []any{map[string]any{"mesh": 0}},
		"meshes": []any{map[string]any{
			"name":       "triangle",
			"primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1}},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": componentFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": indexComponent, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": indexBytes},
		},
		"buffers": []any{buffer},
	}
}

func triangleGLB(t *testing.T) []byte {
	bin := append(append([]byte{}, trianglePositions...), 0, 0, 1, 0, 2, 0)
	doc := triangleDocument(map[string]any{"byteLength": len(bin)}, componentUnsignedShort, 6)
	return buildGLB(t, doc, bin)
}

func TestLoadReaderGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	m, err := l.LoadReader("tri", bytes.NewReader(triangleGLB(t)), true)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if m.Name() != "tri" {
		t.Errorf("name = %q, want tri", m.Name())
	}
	if m.IndexCount() != 3 {
		t.Errorf("index count = %d, want 3", m.IndexCount())
	}

	meshes := m.Meshes()
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}
	for i, v := range meshes[0].Vertices {
		if v.Normal != [3]float32{0, 1, 0} {
			t.Errorf("vertex %d generated normal = %v, want +Y", i, v.Normal)
		}
	}
	if meshes[0].Vertices[2].Position != [3]float32{1, 0, 0} {
		t.Errorf("vertex 2 position = %v", meshes[0].Vertices[2].Position)
	}
	if l.Get("tri") != m {
		t.Error("model was not cached under its name")
	}
}

func TestIndexComponentWidths(t *testing.T) {
	cases := []struct {
		name      string
		component componentType
		data      []byte
	}{
		{"uint8", componentUnsignedByte, []byte{2, 1, 0}},
		{"uint16", componentUnsignedShort, []byte{2, 0, 1, 0, 0, 0}},
		{"uint32", componentUnsignedInt, []byte{2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bin := append(append([]byte{}, trianglePositions...), tc.data...)
			doc := triangleDocument(map[string]any{"uri": dataURI(bin), "byteLength": len(bin)}, tc.component, len(tc.data))
			js, _ := json.Marshal(doc)

			imported, err := gltfBackend{}.ImportReader(bytes.NewReader(js), false)
			if err != nil {
				t.Fatalf("ImportReader: %v", err)
			}
			got := imported.Meshes[0].Indices
			want := []uint32{2, 1, 0}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("indices = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestNonIndexedPrimitiveGetsSequentialIndices(t *testing.T) {
	doc := triangleDocument(map[string]any{"uri": dataURI(trianglePositions), "byteLength": 36}, componentUnsignedShort, 0)
	prim := doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)
	delete(prim, "indices")
	doc["accessors"] = doc["accessors"].([]any)[:1]
	doc["bufferViews"] = doc["bufferViews"].([]any)[:1]
	js, _ := json.Marshal(doc)

	imported, err := gltfBackend{}.ImportReader(bytes.NewReader(js), false)
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if got := imported.Meshes[0].Indices; len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("indices = %v, want [0 1 2]", got)
	}
}

func TestNodeTransformApplied(t *testing.T) {
	bin := append(append([]byte{}, trianglePositions...), 0, 1, 2, 0)
	doc := triangleDocument(map[string]any{"uri": dataURI(bin), "byteLength": len(bin)}, componentUnsignedByte, 3)
	doc["nodes"] = []any{
		map[string]any{"translation": []float32{1, 2, 3}, "children": []int{1}},
		map[string]any{"mesh": 0, "scale": []float32{2, 2, 2}},
	}
	js, _ := json.Marshal(doc)

	imported, err := gltfBackend{}.ImportReader(bytes.NewReader(js), false)
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	mesh := imported.Meshes[0]
	if got := mesh.Vertices[1].Position; got != [3]float32{1, 2, 5} {
		t.Errorf("vertex 1 = %v, want [1 2 5]", got)
	}
	if mesh.BoundingMin != [3]float32{1, 2, 3} || mesh.BoundingMax != [3]float32{3, 2, 5} {
		t.Errorf("bounds = %v..%v, want [1 2 3]..[3 2 5]", mesh.BoundingMin, mesh.BoundingMax)
	}
}

func TestInterleavedNormalsRotatedByNode(t *testing.T) {
	bin := f32bytes(
		0, 0, 0, 1, 0, 0,
		0, 0, 1, 1, 0, 0,
		1, 0, 0, 1, 0, 0,
	)
	doc := map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{map[string]any{"mesh": 0, "rotation": []float32{0, float32(math.Sqrt2 / 2), 0, float32(math.Sqrt2 / 2)}}},
		"meshes": []any{map[string]any{
			"primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0, "NORMAL": 1}}},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": componentFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 0, "byteOffset": 12, "componentType": componentFloat, "count": 3, "type": "VEC3"},
		},
		"bufferViews": []any{map[string]any{"buffer": 0, "byteLength": len(bin), "byteStride": 24}},
		"buffers":     []any{map[string]any{"byteLength": len(bin)}},
	}

	imported, err := gltfBackend{}.ImportReader(bytes.NewReader(buildGLB(t, doc, bin)), true)
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	if imported.Name != "unnamed_model" {
		t.Errorf("name = %q, want unnamed_model", imported.Name)
	}

	n := imported.Meshes[0].Vertices[0].Normal
	want := [3]float32{0, 0, -1}
	for i := range want {
		if math.Abs(float64(n[i]-want[i])) > 1e-5 {
			t.Fatalf("rotated normal = %v, want %v", n, want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	valid := triangleGLB(t)

	badMagic := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(badMagic[0:], 0xdeadbeef)

	badVersion := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(badVersion[4:], 1)

	var binOnly bytes.Buffer
	binary.Write(&binOnly, binary.LittleEndian, glbHeader{Magic: glbMagic, Version: glbVersion, Length: 24})
	binary.Write(&binOnly, binary.LittleEndian, glbChunkHeader{Length: 4, Type: glbChunkBIN})
	binOnly.Write([]byte{0, 0, 0, 0})

	draco := triangleDocument(map[string]any{"byteLength": 42}, componentUnsignedShort, 6)
	draco["extensionsRequired"] = []string{extensionDraco}

	dracoPrim := triangleDocument(map[string]any{"byteLength": 42}, componentUnsignedShort, 6)
	dracoPrim["extensionsUsed"] = []string{extensionDraco}
	prim := dracoPrim["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)
	prim["extensions"] = map[string]any{extensionDraco: map[string]any{"bufferView": 0}}

	overrun := triangleDocument(map[string]any{"byteLength": 42}, componentUnsignedShort, 6)
	overrun["accessors"].([]any)[0].(map[string]any)["count"] = 10

	triangleBin := append(append([]byte{}, trianglePositions...), 0, 0, 1, 0, 2, 0)

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"too small", []byte{1, 2, 3}, errGLBTooSmall},
		{"bad magic", badMagic, errInvalidGLBMagic},
		{"bad version", badVersion, errInvalidGLBVersion},
		{"missing json chunk", binOnly.Bytes(), errMissingJSONChunk},
		{"draco required", buildGLB(t, draco, triangleBin), errDracoUnsupported},
		{"draco primitive", buildGLB(t, dracoPrim, triangleBin), errDracoUnsupported},
		{"accessor overrun", buildGLB(t, overrun, triangleBin), errAccessorOutOfBounds},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLoader(BackendTypeGLTF)
			m, err := l.LoadReader(tc.name, bytes.NewReader(tc.data), true)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			if m != nil {
				t.Error("expected nil model on error")
			}
			if l.Get(tc.name) != nil {
				t.Error("failed load was cached")
			}
		})
	}
}

func TestLoadDracoNamesFile(t *testing.T) {
	doc := triangleDocument(map[string]any{"byteLength": 42}, componentUnsignedShort, 6)
	doc["extensionsRequired"] = []string{extensionDraco}
	bin := append(append([]byte{}, trianglePositions...), 0, 0, 1, 0, 2, 0)
	path := filepath.Join(t.TempDir(), "board.glb")
	if err := os.WriteFile(path, buildGLB(t, doc, bin), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF)
	_, err := l.Load(path)
	if !errors.Is(err, errDracoUnsupported) {
		t.Fatalf("err = %v, want errDracoUnsupported", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("err = %q, want it to name %s", err, path)
	}

	if got := l.LoadAsync(path); got[0] != nil {
		t.Errorf("LoadAsync result = %v, want nil for a compressed asset", got[0])
	}
}

func TestInvalidGLTFVersion(t *testing.T) {
	doc := triangleDocument(map[string]any{"uri": dataURI(trianglePositions), "byteLength": 36}, componentUnsignedShort, 0)
	doc["asset"] = map[string]any{"version": "1.0"}
	js, _ := json.Marshal(doc)

	if _, err := (gltfBackend{}).ImportReader(bytes.NewReader(js), false); !errors.Is(err, errInvalidGLTFVersion) {
		t.Errorf("err = %v, want errInvalidGLTFVersion", err)
	}
}

func TestLoadExternalBufferAndCache(t *testing.T) {
	dir := t.TempDir()
	bin := append(append([]byte{}, trianglePositions...), 0, 1, 2, 0)
	if err := os.WriteFile(filepath.Join(dir, "tri.bin"), bin, 0o644); err != nil {
		t.Fatal(err)
	}
	doc := triangleDocument(map[string]any{"uri": "tri.bin", "byteLength": len(bin)}, componentUnsignedByte, 3)
	doc["scenes"] = []any{map[string]any{"nodes": []int{0}}}
	js, _ := json.Marshal(doc)
	path := filepath.Join(dir, "board.gltf")
	if err := os.WriteFile(path, js, 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF)
	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.Name() != "board" {
		t.Errorf("name = %q, want board", first.Name())
	}

	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first != second {
		t.Error("second Load did not return the cached model")
	}
	if len(l.Models()) != 1 {
		t.Errorf("cache holds %d models, want 1", len(l.Models()))
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\nv 0 0 1\nv 1 0 0\nf 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF)
	if _, err := l.Load(path); !errors.Is(err, errUnsupportedFormat) {
		t.Errorf("err = %v, want errUnsupportedFormat", err)
	}
	if _, err := l.Load(filepath.Join(dir, "missing.obj")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
}

func TestLoadSniffsGLBWithoutExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "die.bin")
	if err := os.WriteFile(path, triangleGLB(t), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewLoader(BackendTypeGLTF).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.IndexCount() != 3 {
		t.Errorf("index count = %d, want 3", m.IndexCount())
	}
}

func TestWithModelPrepopulatesCache(t *testing.T) {
	m := model.NewModel(model.WithName("dice"))
	l := NewLoader(BackendTypeGLTF, WithModel("dice.glb", m))

	got, err := l.Load("dice.glb")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != m {
		t.Error("Load did not return the pre-populated model")
	}
}

func TestLoadAsync(t *testing.T) {
	dir := t.TempDir()
	glb := triangleGLB(t)
	paths := []string{
		filepath.Join(dir, "a.glb"),
		filepath.Join(dir, "b.glb"),
		filepath.Join(dir, "missing.glb"),
	}
	for _, p := range paths[:2] {
		if err := os.WriteFile(p, glb, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	l := NewLoader(BackendTypeGLTF, WithWorkers(2))
	results := l.LoadAsync(paths...)

	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, p := range paths[:2] {
		if results[i] == nil {
			t.Errorf("result %d is nil", i)
			continue
		}
		if l.Get(p) != results[i] {
			t.Errorf("result %d not cached under %s", i, p)
		}
	}
	if results[2] != nil {
		t.Error("missing file produced a model")
	}

	if got := l.LoadAsync(); len(got) != 0 {
		t.Errorf("empty LoadAsync returned %d results", len(got))
	}
}

func TestDecodeDataURI(t *testing.T) {
	got, err := decodeDataURI(dataURI([]byte{1, 2, 3}))
	if err != nil || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("decodeDataURI = %v, %v", got, err)
	}
	for _, uri := range []string{"data:application/octet-stream;base64", "data:text/plain,abc"} {
		if _, err := decodeDataURI(uri); !errors.Is(err, errInvalidBufferURI) {
			t.Errorf("decodeDataURI(%q) err = %v, want errInvalidBufferURI", uri, err)
		}
	}
}

func TestSplitGLBSkipsUnknownChunks(t *testing.T) {
	glb := triangleGLB(t)
	var extra bytes.Buffer
	binary.Write(&extra, binary.LittleEndian, glbChunkHeader{Length: 4, Type: 0x12345678})
	extra.Write([]byte{9, 9, 9, 9})
	data := append(append([]byte{}, glb...), extra.Bytes()...)

	js, bin, err := splitGLB(data)
	if err != nil {
		t.Fatalf("splitGLB: %v", err)
	}
	if !json.Valid(js) {
		t.Error("JSON chunk is not valid JSON")
	}
	if len(bin) != 44 {
		t.Errorf("BIN chunk is %d bytes, want 44", len(bin))
	}
}

func TestGLTFBackendHandles(t *testing.T) {
	b := gltfBackend{}
	for ext, want := range map[string]bool{".gltf": true, ".glb": true, ".obj": false, "": false} {
		if got := b.Handles(ext); got != want {
			t.Errorf("Handles(%q) = %v, want %v", ext, got, want)
		}
	}
}
