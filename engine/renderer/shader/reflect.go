package shader

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structDeclRegex  = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
	entryDeclRegex   = regexp.MustCompile(`@(vertex|fragment)\b[^{;]*?\bfn\s+(\w+)`)
	attributeRegex   = regexp.MustCompile(`@(\w+)(?:\(\s*([^)]*?)\s*\))?`)
)

// structMember is one member of a WGSL struct. location is -1 when the member has no @location.
type structMember struct {
	name     string
	typeName string
	location int
	builtin  bool
}

type structDecl struct {
	name    string
	members []structMember
}

// bindingDecl is a module-scope resource variable, e.g. @group(0) @binding(0) var<uniform> camera: CameraUniform.
type bindingDecl struct {
	group   int
	binding int
	space   string
	name    string
	typ     string
}

// wgslModule is the reflected view of one WGSL source: struct declarations, resource bindings and
// entry points. The source is scanned with comments removed.
type wgslModule struct {
	structs  []structDecl
	bindings []bindingDecl
	entries  map[ShaderType]string
	layouts  *layoutResolver
}

// reflectWGSL scans WGSL source for the declarations pipeline creation needs.
//
// Parameters:
//   - source: the raw WGSL source
//
// Returns:
//   - *wgslModule: the reflected module
func reflectWGSL(source string) *wgslModule {
	code := removeComments(source)
	m := &wgslModule{entries: make(map[ShaderType]string)}

	for _, match := range structDeclRegex.FindAllStringSubmatch(code, -1) {
		m.structs = append(m.structs, structDecl{name: match[1], members: parseMembers(match[2])})
	}

	for _, match := range bindingDeclRegex.FindAllStringSubmatch(code, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		m.bindings = append(m.bindings, bindingDecl{
			group:   group,
			binding: binding,
			space:   strings.Join(strings.Fields(match[3]), ""),
			name:    match[4],
			typ:     strings.TrimSpace(match[5]),
		})
	}

	for _, match := range entryDeclRegex.FindAllStringSubmatch(code, -1) {
		stage := ShaderTypeVertex
		if match[1] == "fragment" {
			stage = ShaderTypeFragment
		}
		if _, seen := m.entries[stage]; !seen {
			m.entries[stage] = match[2]
		}
	}

	m.layouts = newLayoutResolver(m.structs)
	return m
}

// entryPoint returns the first entry point declared for the stage, or "" when there is none.
func (m *wgslModule) entryPoint(stage ShaderType) string {
	return m.entries[stage]
}

// vertexLayouts builds one buffer layout per vertex input struct, keyed in declaration order.
// A vertex input struct has at least one @location member and no @builtin member. Structs with a
// member that has no vertex format are left out.
func (m *wgslModule) vertexLayouts() map[int][]wgpu.VertexBufferLayout {
	out := make(map[int][]wgpu.VertexBufferLayout)
	for _, sd := range m.structs {
		if !sd.isVertexInput() {
			continue
		}
		layout, ok := sd.vertexBufferLayout()
		if !ok {
			continue
		}
		out[len(out)] = []wgpu.VertexBufferLayout{layout}
	}
	return out
}

// bindGroupLayouts groups the uniform and storage buffer bindings by group index with entries sorted
// by binding. Textures and samplers are logged and skipped. The second result maps group and binding
// to the declared variable name.
func (m *wgslModule) bindGroupLayouts(visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)

	for _, b := range m.bindings {
		bufferType, ok := bufferBindingType(b.space)
		if !ok {
			log.Printf("[Shader] skipping non-buffer binding %s at group %d binding %d", b.name, b.group, b.binding)
			continue
		}

		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(b.binding),
			Visibility: visibility,
			Buffer:     wgpu.BufferBindingLayout{Type: bufferType},
		}
		if l, ok := m.layouts.resolve(b.typ); ok {
			entry.Buffer.MinBindingSize = l.size
		}
		entries[b.group] = append(entries[b.group], entry)

		if names[b.group] == nil {
			names[b.group] = make(map[int]string)
		}
		names[b.group][b.binding] = b.name
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, list := range entries {
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		out[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return out, names
}

// bufferBindingType maps a var address space ("uniform", "storage", "storage,read", "storage,read_write")
// to the wgpu buffer binding type.
func bufferBindingType(space string) (wgpu.BufferBindingType, bool) {
	switch space {
	case "uniform":
		return wgpu.BufferBindingTypeUniform, true
	case "storage", "storage,read":
		return wgpu.BufferBindingTypeReadOnlyStorage, true
	case "storage,read_write":
		return wgpu.BufferBindingTypeStorage, true
	}
	return 0, false
}

func (sd structDecl) isVertexInput() bool {
	located := false
	for _, mem := range sd.members {
		if mem.builtin {
			return false
		}
		if mem.location >= 0 {
			located = true
		}
	}
	return located
}

// vertexBufferLayout packs the members tightly in declaration order.
func (sd structDecl) vertexBufferLayout() (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(sd.members))
	var stride uint64
	for _, mem := range sd.members {
		format, size, ok := vertexFormat(mem.typeName)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         stride,
			ShaderLocation: uint32(mem.location),
		})
		stride += size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// parseMembers splits a struct body into members, reading @location and @builtin attributes.
func parseMembers(body string) []structMember {
	var members []structMember
	for _, part := range splitTopLevel(body) {
		mem := structMember{location: -1}
		for _, attr := range attributeRegex.FindAllStringSubmatch(part, -1) {
			switch attr[1] {
			case "builtin":
				mem.builtin = true
			case "location":
				if loc, err := strconv.Atoi(attr[2]); err == nil {
					mem.location = loc
				}
			}
		}

		decl := strings.TrimSpace(attributeRegex.ReplaceAllString(part, ""))
		name, typ, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		mem.name = strings.TrimSpace(name)
		mem.typeName = strings.Join(strings.Fields(typ), "")
		if mem.name == "" || mem.typeName == "" {
			continue
		}
		members = append(members, mem)
	}
	return members
}

// splitTopLevel splits s at commas outside of <...> template lists.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// removeComments drops // line comments and nestable /* */ block comments. Newlines inside
// block comments are kept.
func removeComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}

		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case depth > 0 && c == '*' && next == '/':
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				b.WriteByte(c)
			}
		case c == '/' && next == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
