package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("camera")

	if p.Label() != "camera" {
		t.Errorf("label = %q, want camera", p.Label())
	}
	if p.Initialized() {
		t.Error("fresh provider reports initialized")
	}
	if p.Buffer(0) != nil || p.BindGroup() != nil || p.VertexBuffer() != nil {
		t.Error("fresh provider holds GPU resources")
	}
}

func TestMeshProviderState(t *testing.T) {
	p := NewBindGroupProvider("die")
	p.SetIndexCount(36)
	if p.IndexCount() != 36 {
		t.Errorf("index count = %d, want 36", p.IndexCount())
	}
	if p.Initialized() {
		t.Error("index count alone should not mark the provider initialized")
	}

	p.SetVertexBuffer(new(wgpu.Buffer))
	if !p.Initialized() {
		t.Error("provider with a vertex buffer not initialized")
	}
}

func TestReleaseEmptyProvider(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetIndexCount(3)
	p.Release()
	if p.IndexCount() != 0 || p.Buffer(0) != nil {
		t.Error("release did not reset the provider")
	}
}

func TestBytes(t *testing.T) {
	writes := []BufferWrite{{Data: make([]byte, 80)}, {Data: make([]byte, 64)}, {}}
	if got := Bytes(writes); got != 144 {
		t.Errorf("Bytes = %d, want 144", got)
	}
}
