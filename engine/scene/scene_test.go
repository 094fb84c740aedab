package scene

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

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

type drawRecord struct {
	key        string
	mesh       bind_group_provider.BindGroupProvider
	bindGroups []bind_group_provider.BindGroupProvider
}

// fakeRenderer records scene traffic without a GPU.
type fakeRenderer struct {
	pipelines   map[string]pipeline.Pipeline
	clear       common.Color
	meshUploads int
	bindGroups  []wgpu.BindGroupLayoutDescriptor
	writes      [][]bind_group_provider.BufferWrite
	draws       []drawRecord
	drawErr     error
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{pipelines: make(map[string]pipeline.Pipeline)}
}

func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return f.pipelines[key] }
func (f *fakeRenderer) RegisterPipelines(ps ...pipeline.Pipeline) error {
	for _, p := range ps {
		f.pipelines[p.PipelineKey()] = p
	}
	return nil
}
func (f *fakeRenderer) Resize(int, int) {}
func (f *fakeRenderer) InitMeshBuffers(p bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	f.meshUploads++
	p.SetVertexBuffer(new(wgpu.Buffer))
	p.SetIndexCount(indexCount)
	return nil
}
func (f *fakeRenderer) InitBindGroup(_ bind_group_provider.BindGroupProvider, d wgpu.BindGroupLayoutDescriptor, _ map[int]uint64) error {
	f.bindGroups = append(f.bindGroups, d)
	return nil
}
func (f *fakeRenderer) WriteBuffers(w []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, append([]bind_group_provider.BufferWrite(nil), w...))
}
func (f *fakeRenderer) SetClearColor(c common.Color) { f.clear = c }
func (f *fakeRenderer) BeginFrame() error            { return nil }
func (f *fakeRenderer) DrawCall(key string, mesh bind_group_provider.BindGroupProvider, _ uint32, bg []bind_group_provider.BindGroupProvider) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.draws = append(f.draws, drawRecord{key: key, mesh: mesh, bindGroups: append([]bind_group_provider.BindGroupProvider(nil), bg...)})
	return nil
}
func (f *fakeRenderer) EndFrame()                           {}
func (f *fakeRenderer) Present()                            {}
func (f *fakeRenderer) SetPresentMode(renderer.PresentMode) {}
func (f *fakeRenderer) Release()                            {}

func basePipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader("base_vs", shader.ShaderTypeVertex, shader.BaseSource)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := shader.NewShader("base_fs", shader.ShaderTypeFragment, shader.BaseSource)
	if err != nil {
		t.Fatal(err)
	}
	return pipeline.NewPipeline("base", pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs))
}

func triangleModel(name string) model.Model {
	return model.NewModel(
		model.WithName(name),
		model.WithMeshes([]model.ImportedMesh{{
			Vertices: []model.GPUVertex{
				{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 1, 0}},
				{Position: [3]float32{0, 0, 1}, Normal: [3]float32{0, 1, 0}},
				{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 1, 0}},
			},
			Indices: []uint32{0, 1, 2},
		}}),
	)
}

func newTestScene(t *testing.T) (Scene, *fakeRenderer) {
	t.Helper()
	fr := newFakeRenderer()
	cam := camera.NewCamera(camera.WithController(camera.NewCameraController()))
	s, err := NewScene("tabletop", cam, fr, basePipeline(t))
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s, fr
}

func TestNewSceneInitializesCameraAndBackground(t *testing.T) {
	s, fr := newTestScene(t)

	if fr.Pipeline("base") == nil {
		t.Error("pipeline was not registered")
	}
	if want := common.ColorFromHex(0x222222); fr.clear != want || s.Background() != want {
		t.Errorf("clear colour = %+v, want %+v", fr.clear, want)
	}
	if len(fr.bindGroups) != 1 {
		t.Fatalf("got %d bind groups, want the camera group only", len(fr.bindGroups))
	}
	if size := fr.bindGroups[0].Entries[0].Buffer.MinBindingSize; size != 80 {
		t.Errorf("camera binding size = %d, want 80", size)
	}
	if s.PipelineKey() != "base" {
		t.Errorf("pipeline key = %q, want base", s.PipelineKey())
	}
}

func TestWithBackgroundHex(t *testing.T) {
	fr := newFakeRenderer()
	cam := camera.NewCamera()
	if _, err := NewScene("title", cam, fr, basePipeline(t), WithBackgroundHex(0xff0000)); err != nil {
		t.Fatal(err)
	}
	if fr.clear != (common.Color{R: 1, A: 1}) {
		t.Errorf("clear colour = %+v, want red", fr.clear)
	}
}

func TestAddNilModelIsNoOp(t *testing.T) {
	s, fr := newTestScene(t)

	if node := s.Add(nil); node != nil {
		t.Errorf("Add(nil) = %v, want nil", node)
	}
	if s.Add(model.NewModel(model.WithName("empty"))) != nil {
		t.Error("Add of an empty model should return nil")
	}
	if s.Count() != 0 || fr.meshUploads != 0 {
		t.Errorf("count = %d, uploads = %d, want 0 and 0", s.Count(), fr.meshUploads)
	}
}

func TestAddUploadsMeshOnce(t *testing.T) {
	s, fr := newTestScene(t)
	m := triangleModel("die")

	a := s.Add(m, game_object.WithPosition(1, 0, 0))
	b := s.Add(m)

	if a == nil || b == nil {
		t.Fatal("Add returned nil for a valid model")
	}
	if fr.meshUploads != 1 {
		t.Errorf("mesh uploads = %d, want 1", fr.meshUploads)
	}
	if a.ID() == b.ID() || s.Get(a.ID()) != a || s.Get(b.ID()) != b {
		t.Error("nodes not registered under distinct IDs")
	}
	if a.UniformProvider() == nil {
		t.Error("node has no model uniform provider")
	}
	if size := fr.bindGroups[1].Entries[0].Buffer.MinBindingSize; size != 64 {
		t.Errorf("node binding size = %d, want 64", size)
	}
	if x, _, _ := a.Position(); x != 1 {
		t.Errorf("node x = %v, want 1", x)
	}
}

func TestUpdateWritesCameraAndEnabledNodes(t *testing.T) {
	s, fr := newTestScene(t)
	m := triangleModel("die")
	s.Add(m)
	hidden := s.Add(m)
	hidden.SetEnabled(false)
	fr.writes = nil

	s.Update(0.016, 2.5)

	if len(fr.writes) != 1 {
		t.Fatalf("got %d write batches, want 1", len(fr.writes))
	}
	batch := fr.writes[0]
	if len(batch) != 2 {
		t.Fatalf("got %d writes, want camera plus one enabled node", len(batch))
	}
	cam := batch[0].Data
	if len(cam) != 80 {
		t.Fatalf("camera uniform size = %d, want 80", len(cam))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(cam[76:])); got != 2.5 {
		t.Errorf("uniform time = %v, want 2.5", got)
	}
	if len(batch[1].Data) != 64 {
		t.Errorf("model uniform size = %d, want 64", len(batch[1].Data))
	}
}

func TestDrawCallsBindCameraThenNode(t *testing.T) {
	s, fr := newTestScene(t)
	m := triangleModel("die")
	a := s.Add(m)
	s.Add(m).SetEnabled(false)

	if err := s.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls: %v", err)
	}
	if len(fr.draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(fr.draws))
	}
	d := fr.draws[0]
	if d.key != "base" || d.mesh != m.MeshProvider() {
		t.Errorf("draw = %+v, want base pipeline with the model mesh", d)
	}
	if len(d.bindGroups) != 2 || d.bindGroups[1] != a.UniformProvider() {
		t.Errorf("bind groups = %v, want [camera, node]", d.bindGroups)
	}

	fr.drawErr = errors.New("boom")
	if err := s.DrawCalls(); !errors.Is(err, fr.drawErr) {
		t.Errorf("err = %v, want wrapped draw error", err)
	}
}

func TestAnimateRunsOnlyForPresentNodes(t *testing.T) {
	s, _ := newTestScene(t)
	m := triangleModel("text")
	node := s.Add(m)
	other := s.Add(m)

	var calls int
	var lastElapsed float32
	s.Animate(node, func(n game_object.GameObject, dt, elapsed float32) {
		calls++
		lastElapsed = elapsed
		n.SetRotation(float32(math.Cos(float64(elapsed)))*0.015, float32(math.Sin(float64(elapsed)))*0.025, 0)
	})
	s.Animate(other, func(game_object.GameObject, float32, float32) {
		s.Remove(other.ID())
	})
	s.Animate(game_object.NewGameObject(), func(game_object.GameObject, float32, float32) {
		t.Error("hook on a foreign node ran")
	})
	s.Animate(nil, func(game_object.GameObject, float32, float32) {})

	s.Update(0.1, 1)
	s.Update(0.1, 2)

	if calls != 2 || lastElapsed != 2 {
		t.Errorf("calls = %d, last elapsed = %v, want 2 and 2", calls, lastElapsed)
	}
	if rx, _, _ := node.Rotation(); rx != float32(math.Cos(2))*0.015 {
		t.Errorf("rotation x = %v", rx)
	}
	if s.Count() != 1 || s.Get(other.ID()) != nil {
		t.Errorf("self-removing node still present, count = %d", s.Count())
	}

	s.Remove(node.ID())
	s.Update(0.1, 3)
	if calls != 2 {
		t.Errorf("hook ran after its node was removed")
	}
}

func TestUpdateAdvancesRotationSpeed(t *testing.T) {
	s, _ := newTestScene(t)
	node := s.Add(triangleModel("spinner"), game_object.WithRotationSpeed(0, 1, 0))

	s.Update(0.5, 0.5)

	if _, ry, _ := node.Rotation(); ry != 0.5 {
		t.Errorf("rotation y = %v, want 0.5", ry)
	}
}

func TestClear(t *testing.T) {
	s, _ := newTestScene(t)
	node := s.Add(triangleModel("die"))

	s.Clear()

	if s.Count() != 0 || s.Get(node.ID()) != nil || len(s.Nodes()) != 0 {
		t.Error("Clear left nodes behind")
	}
}
