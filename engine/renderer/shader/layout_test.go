package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestResolveLayout(t *testing.T) {
	m := reflectWGSL(`
struct Light { dir: vec3<f32>, power: f32, };
struct Mixed { a: f32, b: vec3f, c: vec2<f32>, };
struct Lights { count: u32, items: array<Light, 4>, };
struct Loop { next: Loop, };
`)
	cases := []struct {
		typ  string
		size uint64
		ok   bool
	}{
		{"f32", 4, true},
		{"vec2<f32>", 8, true},
		{"vec3f", 12, true},
		{"mat3x3<f32>", 48, true},
		{"mat4x4f", 64, true},
		{"array<vec3<f32>, 3>", 48, true},
		{"Light", 16, true},
		{"Mixed", 48, true},
		{"Lights", 80, true},
		{"array<Light>", 16, true},
		{"Loop", 0, false},
		{"texture_2d<f32>", 0, false},
	}
	for _, tc := range cases {
		l, ok := m.layouts.resolve(tc.typ)
		if ok != tc.ok || l.size != tc.size {
			t.Errorf("resolve(%q) = %d, %v; want %d, %v", tc.typ, l.size, ok, tc.size, tc.ok)
		}
	}
}

func TestVertexFormat(t *testing.T) {
	cases := []struct {
		typ    string
		format wgpu.VertexFormat
		size   uint64
	}{
		{"f32", wgpu.VertexFormatFloat32, 4},
		{"vec2<u32>", wgpu.VertexFormatUint32x2, 8},
		{"vec4i", wgpu.VertexFormatSint32x4, 16},
		{"vec3<f32>", wgpu.VertexFormatFloat32x3, 12},
	}
	for _, tc := range cases {
		format, size, ok := vertexFormat(tc.typ)
		if !ok || format != tc.format || size != tc.size {
			t.Errorf("vertexFormat(%q) = %v, %d, %v", tc.typ, format, size, ok)
		}
	}
	if _, _, ok := vertexFormat("mat4x4<f32>"); ok {
		t.Error("matrix accepted as a vertex format")
	}
}

func TestRemoveComments(t *testing.T) {
	src := "a // line\nb /* outer /* inner */ still */ c\n/* multi\nline */d"
	got := strings.Fields(removeComments(src))
	want := []string{"a", "b", "c", "d"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("removeComments = %q, want %q", got, want)
	}
}

func TestReflectSkipsCommentedDeclarations(t *testing.T) {
	m := reflectWGSL(`
// @vertex fn old_main() {}
/* struct Dead { @location(0) p: vec3<f32>, }; */
struct In { @location(0) p: vec3<f32>, @location(1) uv: vec2<f32>, };
@vertex
@diagnostic(off, derivative_uniformity)
fn main(in: In) -> @builtin(position) vec4<f32> { return vec4<f32>(in.p, 1.0); }
`)
	if got := m.entryPoint(ShaderTypeVertex); got != "main" {
		t.Errorf("vertex entry = %q, want main", got)
	}
	if got := m.entryPoint(ShaderTypeFragment); got != "" {
		t.Errorf("fragment entry = %q, want none", got)
	}
	layouts := m.vertexLayouts()
	if len(layouts) != 1 || layouts[0][0].ArrayStride != 20 {
		t.Fatalf("vertex layouts = %+v, want one layout of stride 20", layouts)
	}
}
