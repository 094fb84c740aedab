package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	vectorTypeRegex = regexp.MustCompile(`^vec([234])(?:<(f32|i32|u32)>|([fiu]))$`)
	matrixTypeRegex = regexp.MustCompile(`^mat([234])x([234])(?:<f32>|f)$`)
	arrayTypeRegex  = regexp.MustCompile(`^array<(.+?)(?:,(\d+)u?)?>$`)
)

// typeLayout is the host-shareable size and alignment of a WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// stride is the element pitch of the type inside an array.
func (l typeLayout) stride() uint64 {
	return alignUp(l.size, l.align)
}

func alignUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// layoutResolver computes buffer layouts for the struct declarations of one module. Struct layouts
// are memoized; a struct that refers back to itself does not resolve.
type layoutResolver struct {
	decls    map[string]structDecl
	resolved map[string]typeLayout
	pending  map[string]bool
}

func newLayoutResolver(structs []structDecl) *layoutResolver {
	r := &layoutResolver{
		decls:    make(map[string]structDecl, len(structs)),
		resolved: make(map[string]typeLayout, len(structs)),
		pending:  make(map[string]bool),
	}
	for _, sd := range structs {
		r.decls[sd.name] = sd
	}
	return r
}

// resolve returns the layout of a type. A runtime-sized array counts as a single element, which is
// the smallest buffer a binding of that type may be given.
func (r *layoutResolver) resolve(typeName string) (typeLayout, bool) {
	t := strings.Join(strings.Fields(typeName), "")

	if l, ok := scalarLayout(t); ok {
		return l, true
	}
	if m := vectorTypeRegex.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return vectorLayout(n), true
	}
	if m := matrixTypeRegex.FindStringSubmatch(t); m != nil {
		cols, _ := strconv.Atoi(m[1])
		rows, _ := strconv.Atoi(m[2])
		col := vectorLayout(rows)
		return typeLayout{size: uint64(cols) * col.stride(), align: col.align}, true
	}
	if m := arrayTypeRegex.FindStringSubmatch(t); m != nil {
		elem, ok := r.resolve(m[1])
		if !ok {
			return typeLayout{}, false
		}
		count := uint64(1)
		if m[2] != "" {
			n, err := strconv.ParseUint(m[2], 10, 64)
			if err != nil || n == 0 {
				return typeLayout{}, false
			}
			count = n
		}
		return typeLayout{size: count * elem.stride(), align: elem.align}, true
	}
	return r.structLayout(t)
}

// structLayout places each non-builtin member at the next offset aligned for its type and rounds the
// total up to the largest member alignment.
func (r *layoutResolver) structLayout(name string) (typeLayout, bool) {
	if l, ok := r.resolved[name]; ok {
		return l, true
	}
	sd, ok := r.decls[name]
	if !ok || r.pending[name] {
		return typeLayout{}, false
	}
	r.pending[name] = true
	defer delete(r.pending, name)

	var offset, align uint64 = 0, 1
	for _, mem := range sd.members {
		if mem.builtin {
			continue
		}
		l, ok := r.resolve(mem.typeName)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignUp(offset, l.align) + l.size
		align = max(align, l.align)
	}

	l := typeLayout{size: alignUp(offset, align), align: align}
	r.resolved[name] = l
	return l, true
}

func scalarLayout(t string) (typeLayout, bool) {
	switch t {
	case "f32", "i32", "u32":
		return typeLayout{size: 4, align: 4}, true
	case "f16":
		return typeLayout{size: 2, align: 2}, true
	}
	return typeLayout{}, false
}

// vectorLayout is the layout of an n-component vector of 32-bit scalars. vec3 aligns like vec4.
func vectorLayout(n int) typeLayout {
	size := uint64(n) * 4
	if n == 2 {
		return typeLayout{size: size, align: 8}
	}
	return typeLayout{size: size, align: 16}
}

var vertexFormats = map[byte][5]wgpu.VertexFormat{
	'f': {1: wgpu.VertexFormatFloat32, 2: wgpu.VertexFormatFloat32x2, 3: wgpu.VertexFormatFloat32x3, 4: wgpu.VertexFormatFloat32x4},
	'i': {1: wgpu.VertexFormatSint32, 2: wgpu.VertexFormatSint32x2, 3: wgpu.VertexFormatSint32x3, 4: wgpu.VertexFormatSint32x4},
	'u': {1: wgpu.VertexFormatUint32, 2: wgpu.VertexFormatUint32x2, 3: wgpu.VertexFormatUint32x3, 4: wgpu.VertexFormatUint32x4},
}

// vertexFormat maps a 32-bit scalar or vector type to its vertex format and tightly packed size.
func vertexFormat(t string) (wgpu.VertexFormat, uint64, bool) {
	var kind byte
	n := 1
	switch {
	case t == "f32" || t == "i32" || t == "u32":
		kind = t[0]
	default:
		m := vectorTypeRegex.FindStringSubmatch(t)
		if m == nil {
			return 0, 0, false
		}
		n, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			kind = m[2][0]
		} else {
			kind = m[3][0]
		}
	}
	return vertexFormats[kind][n], uint64(n) * 4, true
}
