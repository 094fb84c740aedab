package scene

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/camera"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/game_object"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultBackground is the clear colour of a scene built without WithBackground.
const DefaultBackground uint32 = 0x222222

var errMissingBindGroup = errors.New("pipeline declares a bind group the scene does not provide")

// AnimateFunc is a per-frame hook attached to a node with Scene.Animate.
// It runs before the node's uniform is written, only while the node is still part of the scene.
type AnimateFunc func(node game_object.GameObject, deltaTime, elapsed float32)

// Scene manages the nodes of one view together with its Camera, Renderer and render pipeline.
// Every node shares the pipeline; the camera uniform and each node's model uniform are rewritten every frame.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// PipelineKey returns the key of the render pipeline every node is drawn with.
	PipelineKey() string

	// Background returns the scene's clear colour.
	Background() common.Color

	// SetBackground changes the clear colour and forwards it to the renderer.
	//
	// Parameters:
	//   - c: the new clear colour
	SetBackground(c common.Color)

	// Add places a model in the scene as a new node. The model's mesh buffers are uploaded on first use and the node's
	// model uniform is created from the pipeline's layout. A nil model is ignored and nil is returned, so a failed
	// asset load simply leaves the scene without that object. Upload failures are logged and also return nil.
	//
	// Parameters:
	//   - m: the model to place, may be nil
	//   - options: GameObject options for the node's initial transform
	//
	// Returns:
	//   - game_object.GameObject: the new node, or nil if nothing was added
	Add(m model.Model, options ...game_object.GameObjectBuilderOption) game_object.GameObject

	// Get retrieves a node by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the node's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the node or nil
	Get(id uint64) game_object.GameObject

	// Remove drops a node, its animation hooks and its model uniform GPU resources.
	//
	// Parameters:
	//   - id: the node's unique ID
	Remove(id uint64)

	// Nodes returns the scene's nodes in insertion order.
	//
	// Returns:
	//   - []game_object.GameObject: a copy of the node list
	Nodes() []game_object.GameObject

	// Count returns the number of nodes in the scene.
	Count() int

	// Animate attaches a per-frame hook to a node. Hooks for nil or foreign nodes are ignored.
	//
	// Parameters:
	//   - node: a node previously returned by Add
	//   - fn: the hook to run every frame
	Animate(node game_object.GameObject, fn AnimateFunc)

	// Update runs animation hooks, advances node spin, refreshes the camera matrices from its controller and
	// uploads the camera uniform and every node's model uniform.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//   - elapsed: accumulated scene time in seconds, forwarded to the shader
	Update(deltaTime, elapsed float32)

	// DrawCalls records one indexed draw per enabled node. Must be called between BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: if a draw call fails or the pipeline declares a group the scene cannot fill
	DrawCalls() error

	// Clear removes every node and releases their model uniform GPU resources.
	Clear()
}

type scene struct {
	mu *sync.RWMutex

	name        string
	cam         camera.Camera
	r           renderer.Renderer
	pipelineKey string
	background  common.Color

	cameraGroup    int
	nodeGroup      int
	maxGroup       int
	cameraProvider bind_group_provider.BindGroupProvider
	nodeLayout     wgpu.BindGroupLayoutDescriptor

	nodes      []game_object.GameObject
	registry   map[uint64]game_object.GameObject
	animations map[uint64][]AnimateFunc
	nextID     uint64

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	writePool          []bind_group_provider.BufferWrite
	drawBindGroupsPool []bind_group_provider.BindGroupProvider
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene drawing every node with p. The pipeline is registered with the renderer and its
// vertex shader's bind group variable names locate the camera group (a name containing "camera") and the node group
// (the other declared group). The camera uniform bind group is created immediately from the pipeline's merged layout.
// NewScene panics if cam, r or p is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - p: the render pipeline shared by every node (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
//   - error: if the pipeline cannot be registered or the camera bind group cannot be created
func NewScene(name string, cam camera.Camera, r renderer.Renderer, p pipeline.Pipeline, options ...SceneBuilderOption) (Scene, error) {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if p == nil {
		panic("scene: NewScene requires a non-nil Pipeline")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		cam:                cam,
		r:                  r,
		pipelineKey:        p.PipelineKey(),
		background:         common.ColorFromHex(DefaultBackground),
		registry:           make(map[uint64]game_object.GameObject),
		animations:         make(map[uint64][]AnimateFunc),
		nextID:             1,
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 2),
	}

	for _, option := range options {
		option(s)
	}

	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}
	r.SetClearColor(s.background)

	layouts := p.BindGroupLayoutDescriptors()
	s.maxGroup = pipeline.MaxGroup(layouts)
	s.cameraGroup, s.nodeGroup = locateGroups(p.Shader(shader.ShaderTypeVertex), s.maxGroup)
	s.nodeLayout = layouts[s.nodeGroup]

	s.cameraProvider = bind_group_provider.NewBindGroupProvider(name + " Camera")
	if err := r.InitBindGroup(s.cameraProvider, layouts[s.cameraGroup], nil); err != nil {
		return nil, fmt.Errorf("scene %q: failed to init camera bind group: %w", name, err)
	}

	return s, nil
}

// locateGroups finds the camera group by variable name and picks the first other declared group for node uniforms.
// Shaders that name no camera group fall back to camera at 0 and node at 1.
func locateGroups(vs shader.Shader, maxGroup int) (cameraGroup, nodeGroup int) {
	cameraGroup, nodeGroup = 0, 1
	if vs == nil {
		return
	}

	for g := 0; g <= maxGroup; g++ {
		if groupDeclares(vs, g, "camera") {
			cameraGroup = g
			break
		}
	}
	for g := 0; g <= maxGroup; g++ {
		if g != cameraGroup && len(vs.BindGroupLayoutDescriptor(g).Entries) > 0 {
			return cameraGroup, g
		}
	}
	if cameraGroup == nodeGroup {
		nodeGroup = 0
	}
	return
}

// groupDeclares reports whether any binding variable in group g contains name, case-insensitively.
func groupDeclares(vs shader.Shader, g int, name string) bool {
	for _, e := range vs.BindGroupLayoutDescriptor(g).Entries {
		if strings.Contains(strings.ToLower(vs.BindGroupVarName(g, int(e.Binding))), name) {
			return true
		}
	}
	return false
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) PipelineKey() string {
	return s.pipelineKey
}

func (s *scene) Background() common.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetBackground(c common.Color) {
	s.mu.Lock()
	s.background = c
	s.mu.Unlock()
	s.r.SetClearColor(c)
}

func (s *scene) Add(m model.Model, options ...game_object.GameObjectBuilderOption) game_object.GameObject {
	if m == nil {
		return nil
	}
	if m.IndexCount() == 0 {
		log.Printf("[Scene] %s: model %q has no geometry, skipping", s.name, m.Name())
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meshProvider := m.MeshProvider()
	if !meshProvider.Initialized() {
		if err := s.r.InitMeshBuffers(meshProvider, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
			log.Printf("[Scene] %s: failed to upload mesh for %q: %v", s.name, m.Name(), err)
			return nil
		}
	}

	node := game_object.NewGameObject(append([]game_object.GameObjectBuilderOption{game_object.WithModel(m)}, options...)...)
	id := s.nextID
	node.SetID(id)

	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s %s #%d", s.name, m.Name(), id))
	if err := s.r.InitBindGroup(provider, s.nodeLayout, nil); err != nil {
		log.Printf("[Scene] %s: failed to init node bind group for %q: %v", s.name, m.Name(), err)
		return nil
	}
	node.SetUniformProvider(provider)

	data := node.ModelData()
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: provider, Binding: 0, Data: data.Marshal()}})

	s.nextID++
	s.nodes = append(s.nodes, node)
	s.registry[id] = node
	return node
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)
	delete(s.animations, id)
	for i, n := range s.nodes {
		if n == node {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			break
		}
	}
	if p := node.UniformProvider(); p != nil {
		p.Release()
	}
}

func (s *scene) Nodes() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game_object.GameObject, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *scene) Animate(node game_object.GameObject, fn AnimateFunc) {
	if node == nil || fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry[node.ID()] != node {
		return
	}
	s.animations[node.ID()] = append(s.animations[node.ID()], fn)
}

func (s *scene) Update(deltaTime, elapsed float32) {
	nodes := s.Nodes()

	for _, node := range nodes {
		s.mu.RLock()
		fns := s.animations[node.ID()]
		present := s.registry[node.ID()] == node
		s.mu.RUnlock()
		if !present {
			continue
		}
		for _, fn := range fns {
			fn(node, deltaTime, elapsed)
		}
		node.Advance(deltaTime)
	}

	s.cam.Update()

	s.mu.Lock()
	defer s.mu.Unlock()

	writes := s.writePool[:0]
	cameraData := s.cam.Uniform(elapsed)
	writes = append(writes, bind_group_provider.BufferWrite{Provider: s.cameraProvider, Binding: 0, Data: cameraData.Marshal()})
	for _, node := range s.nodes {
		provider := node.UniformProvider()
		if provider == nil || !node.Enabled() {
			continue
		}
		data := node.ModelData()
		writes = append(writes, bind_group_provider.BufferWrite{Provider: provider, Binding: 0, Data: data.Marshal()})
	}
	s.writePool = writes

	s.r.WriteBuffers(writes)
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, node := range s.nodes {
		if !node.Enabled() {
			continue
		}
		mdl := node.Model()
		if mdl == nil {
			continue
		}

		bindGroups := s.drawBindGroupsPool[:0]
		for g := 0; g <= s.maxGroup; g++ {
			switch g {
			case s.cameraGroup:
				bindGroups = append(bindGroups, s.cameraProvider)
			case s.nodeGroup:
				bindGroups = append(bindGroups, node.UniformProvider())
			default:
				return fmt.Errorf("scene %q group %d: %w", s.name, g, errMissingBindGroup)
			}
		}
		s.drawBindGroupsPool = bindGroups

		if err := s.r.DrawCall(s.pipelineKey, mdl.MeshProvider(), 1, bindGroups); err != nil {
			return fmt.Errorf("draw call failed for node %d in scene %q: %w", node.ID(), s.name, err)
		}
	}

	return nil
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, node := range s.nodes {
		if p := node.UniformProvider(); p != nil {
			p.Release()
		}
	}
	s.nodes = nil
	s.registry = make(map[uint64]game_object.GameObject)
	s.animations = make(map[uint64][]AnimateFunc)
}
