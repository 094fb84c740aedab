package loader

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// importedModel extracts every mesh of the asset. name falls back to the file base of path and
// then to "unnamed_model" when the default scene has no name.
func (a *gltfAsset) importedModel(path string) (*model.ImportedModel, error) {
	meshes, err := a.extractMeshes()
	if err != nil {
		return nil, fmt.Errorf("extracting meshes: %w", err)
	}
	return &model.ImportedModel{Name: a.modelName(path), Meshes: meshes}, nil
}

func (a *gltfAsset) modelName(path string) string {
	if s := a.doc.Scene; s != nil && *s >= 0 && *s < len(a.doc.Scenes) && a.doc.Scenes[*s].Name != "" {
		return a.doc.Scenes[*s].Name
	}
	if path != "" {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "unnamed_model"
}

// extractMeshes bakes node transforms into the vertices of every mesh reachable from the scene
// roots. A document without nodes has its meshes extracted as stored. The positions and normals
// the shader receives are therefore in model space, and the per-object model uniform only carries
// the GameObject transform: the merged meshes share one draw, so per-node matrices have no slot.
func (a *gltfAsset) extractMeshes() ([]model.ImportedMesh, error) {
	var out []model.ImportedMesh
	if len(a.doc.Nodes) == 0 {
		for i := range a.doc.Meshes {
			meshes, err := a.mesh(i, mgl32.Ident4())
			if err != nil {
				return nil, err
			}
			out = append(out, meshes...)
		}
		return out, nil
	}

	visited := make([]bool, len(a.doc.Nodes))
	var visit func(node int, parent mgl32.Mat4) error
	visit = func(node int, parent mgl32.Mat4) error {
		if node < 0 || node >= len(a.doc.Nodes) {
			return fmt.Errorf("node %d out of range", node)
		}
		if visited[node] {
			return nil
		}
		visited[node] = true

		n := &a.doc.Nodes[node]
		world := parent.Mul4(localTransform(n))
		if n.Mesh != nil {
			meshes, err := a.mesh(*n.Mesh, world)
			if err != nil {
				return fmt.Errorf("node %d: %w", node, err)
			}
			out = append(out, meshes...)
		}
		for _, child := range n.Children {
			if err := visit(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range a.rootNodes() {
		if err := visit(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// rootNodes returns the nodes of the default scene, else the first scene, else every node that is
// no other node's child.
func (a *gltfAsset) rootNodes() []int {
	if len(a.doc.Scenes) > 0 {
		s := 0
		if a.doc.Scene != nil && *a.doc.Scene >= 0 && *a.doc.Scene < len(a.doc.Scenes) {
			s = *a.doc.Scene
		}
		return a.doc.Scenes[s].Nodes
	}

	child := make([]bool, len(a.doc.Nodes))
	for _, n := range a.doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots
}

// mesh extracts one ImportedMesh per primitive of a mesh.
func (a *gltfAsset) mesh(index int, world mgl32.Mat4) ([]model.ImportedMesh, error) {
	if index < 0 || index >= len(a.doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", index)
	}
	m := &a.doc.Meshes[index]

	out := make([]model.ImportedMesh, 0, len(m.Primitives))
	for i := range m.Primitives {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("mesh_%d", i)
		}
		if i > 0 {
			name = fmt.Sprintf("%s_prim%d", name, i)
		}

		pm, err := a.primitive(&m.Primitives[i], world)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", index, i, err)
		}
		pm.Name = name
		out = append(out, pm)
	}
	return out, nil
}

func (a *gltfAsset) primitive(p *gltfPrimitive, world mgl32.Mat4) (model.ImportedMesh, error) {
	var mesh model.ImportedMesh
	if _, ok := p.Extensions[extensionDraco]; ok {
		return mesh, errDracoUnsupported
	}
	if p.Mode != nil && *p.Mode != modeTriangles {
		return mesh, fmt.Errorf("primitive mode %d is not supported, only triangles", *p.Mode)
	}

	posIndex, ok := p.Attributes["POSITION"]
	if !ok {
		return mesh, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := a.vec3s(posIndex)
	if err != nil {
		return mesh, fmt.Errorf("positions: %w", err)
	}

	mesh.Vertices = make([]model.GPUVertex, len(positions))
	for i, pos := range positions {
		mesh.Vertices[i].Position = [3]float32(world.Mul4x1(mgl32.Vec3(pos).Vec4(1)).Vec3())
	}

	normIndex, hasNormals := p.Attributes["NORMAL"]
	if hasNormals {
		normals, err := a.vec3s(normIndex)
		if err != nil {
			return mesh, fmt.Errorf("normals: %w", err)
		}
		normalMatrix := world.Mat3().Inv().Transpose()
		for i := range min(len(normals), len(mesh.Vertices)) {
			mesh.Vertices[i].Normal = unitOrUp(normalMatrix.Mul3x1(mgl32.Vec3(normals[i])))
		}
	}

	if p.Indices != nil {
		if mesh.Indices, err = a.indices(*p.Indices); err != nil {
			return mesh, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range mesh.Indices {
			if int(idx) >= len(mesh.Vertices) {
				return mesh, fmt.Errorf("index %d out of range for %d vertices", idx, len(mesh.Vertices))
			}
		}
	} else {
		mesh.Indices = make([]uint32, len(mesh.Vertices))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}

	if !hasNormals && len(mesh.Indices) >= 3 {
		smoothNormals(mesh.Vertices, mesh.Indices)
	}
	mesh.BoundingMin, mesh.BoundingMax = bounds(mesh.Vertices)
	return mesh, nil
}

// localTransform is Matrix when present, otherwise T * R * S.
func localTransform(n *gltfNode) mgl32.Mat4 {
	if n.Matrix != nil {
		return mgl32.Mat4(*n.Matrix)
	}

	m := mgl32.Ident4()
	if t := n.Translation; t != nil {
		m = m.Mul4(mgl32.Translate3D(t[0], t[1], t[2]))
	}
	if r := n.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if s := n.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}

// bounds is the axis-aligned box around the vertex positions, zero for no vertices.
func bounds(vertices []model.GPUVertex) (lo, hi [3]float32) {
	if len(vertices) == 0 {
		return lo, hi
	}
	lo = [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi = [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range vertices {
		for j, c := range v.Position {
			lo[j] = min(lo[j], c)
			hi[j] = max(hi[j], c)
		}
	}
	return lo, hi
}

func unitOrUp(n mgl32.Vec3) [3]float32 {
	if n.Len() < 1e-6 {
		return [3]float32{0, 1, 0}
	}
	return n.Normalize()
}

// smoothNormals accumulates area-weighted face normals onto each triangle's vertices and
// normalizes the sums. Triangles with an out of range index are skipped.
func smoothNormals(vertices []model.GPUVertex, indices []uint32) {
	sums := make([]mgl32.Vec3, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := int(indices[t]), int(indices[t+1]), int(indices[t+2])
		if i0 >= len(vertices) || i1 >= len(vertices) || i2 >= len(vertices) {
			continue
		}
		p0 := mgl32.Vec3(vertices[i0].Position)
		face := mgl32.Vec3(vertices[i1].Position).Sub(p0).Cross(mgl32.Vec3(vertices[i2].Position).Sub(p0))
		for _, i := range [3]int{i0, i1, i2} {
			sums[i] = sums[i].Add(face)
		}
	}
	for i := range vertices {
		vertices[i].Normal = unitOrUp(sums[i])
	}
}
