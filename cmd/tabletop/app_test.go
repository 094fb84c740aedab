package main

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/config"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/camera"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/game_object"
)

func TestSway(t *testing.T) {
	node := game_object.NewGameObject()

	sway(node, 0.016, 0)
	rx, ry, rz := node.Rotation()
	if rx != swayX || ry != 0 || rz != 0 {
		t.Errorf("rotation at t=0 = (%v, %v, %v), want (%v, 0, 0)", rx, ry, rz, swayX)
	}

	sway(node, 0.016, math.Pi/2)
	rx, ry, _ = node.Rotation()
	if math.Abs(float64(rx)) > 1e-6 || math.Abs(float64(ry-swayY)) > 1e-6 {
		t.Errorf("rotation at t=pi/2 = (%v, %v), want (0, %v)", rx, ry, swayY)
	}
}

func TestReloaderQueuesCameraOptions(t *testing.T) {
	ctrl := camera.NewCameraController(camera.TitleVariant()...)
	var queued []func()
	r := newReloader(func(fn func()) { queued = append(queued, fn) }, ctrl, config.Default(), "")
	r.load = func(string) (config.SceneConfig, error) {
		return config.Parse([]byte("variant: tabletop\ncamera:\n  world_size: 30\n"))
	}

	r.reload("scene.yaml")

	if _, maxX, _, _ := ctrl.Bounds(); maxX != 15 {
		t.Fatalf("controller changed before the frame drained the queue (maxX = %v)", maxX)
	}
	if len(queued) != 1 {
		t.Fatalf("queued %d updates, want 1", len(queued))
	}
	queued[0]()

	_, maxX, _, maxZ := ctrl.Bounds()
	if maxX != 30 || maxZ != 3 {
		t.Errorf("bounds after reload maxX = %v, maxZ = %v, want 30 and 3", maxX, maxZ)
	}
}

func TestReloaderDropsRemovedOverrides(t *testing.T) {
	ctrl := camera.NewCameraController(append(config.Default().CameraOptions(), camera.WithAspect(1))...)
	var queued []func()
	r := newReloader(func(fn func()) { queued = append(queued, fn) }, ctrl, config.Default(), "")

	files := map[string]string{
		"tuned.yaml": "variant: tabletop\ncamera:\n  pan_speed: 0.02\n  max_zoom: 4\n  world_size: 30\n",
		"plain.yaml": "variant: tabletop\n",
	}
	r.load = func(path string) (config.SceneConfig, error) { return config.Parse([]byte(files[path])) }

	r.reload("tuned.yaml")
	queued[0]()
	for range 30 {
		ctrl.HandleWheel(-1)
	}
	if got := ctrl.Zoom(); got != 4 {
		t.Fatalf("zoom with max_zoom override = %v, want 4", got)
	}

	r.reload("plain.yaml")
	queued[1]()

	if got := ctrl.Zoom(); got != camera.DefaultMaxZoom {
		t.Errorf("zoom after override removed = %v, want %v", got, camera.DefaultMaxZoom)
	}
	if _, maxX, _, _ := ctrl.Bounds(); maxX != 15 {
		t.Errorf("maxX after override removed = %v, want 15", maxX)
	}
	ctrl.HandlePointerDown(common.MouseButtonSecondary, 0, 0)
	ctrl.HandlePointerMove(100, 0)
	x, _ := ctrl.TargetOffset()
	if want := float32(-100) * (0.0085 / camera.DefaultMaxZoom); math.Abs(float64(x-want)) > 1e-5 {
		t.Errorf("target x after override removed = %v, want %v", x, want)
	}
}

func TestReloaderKeepsCommandLineVariant(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithAspect(1))
	var queued []func()
	start := config.Default()
	start.Variant = string(camera.VariantTitle)
	r := newReloader(func(fn func()) { queued = append(queued, fn) }, ctrl, start, string(camera.VariantTitle))
	r.load = func(string) (config.SceneConfig, error) {
		return config.Parse([]byte("variant: tabletop\ncamera:\n  world_size: 20\n"))
	}

	r.reload("scene.yaml")
	queued[0]()

	if r.current.Variant != string(camera.VariantTitle) {
		t.Errorf("variant after reload = %q, want %q", r.current.Variant, camera.VariantTitle)
	}
	if _, maxX, _, maxZ := ctrl.Bounds(); maxX != 20 || maxZ != 20 {
		t.Errorf("bounds after reload maxX = %v, maxZ = %v, want 20 and 20", maxX, maxZ)
	}
}

func TestReloaderKeepsPreviousOnError(t *testing.T) {
	ctrl := camera.NewCameraController()
	var queued int
	r := newReloader(func(func()) { queued++ }, ctrl, config.Default(), "")
	r.load = func(string) (config.SceneConfig, error) { return config.SceneConfig{}, errors.New("bad yaml") }

	r.reload("scene.yaml")

	if queued != 0 {
		t.Errorf("queued %d updates for an invalid file, want 0", queued)
	}
	if r.current.Variant != config.Default().Variant {
		t.Errorf("current variant = %q, want the previous config kept", r.current.Variant)
	}
}

func TestReloaderRunDrainsChannels(t *testing.T) {
	var queued int
	r := newReloader(func(func()) { queued++ }, camera.NewCameraController(), config.Default(), "")
	r.load = func(string) (config.SceneConfig, error) { return config.Default(), nil }

	events := make(chan string, 2)
	errs := make(chan error, 1)
	events <- "a.yaml"
	events <- "a.yaml"
	errs <- errors.New("overflow")
	close(events)
	close(errs)

	r.run(events, errs)

	if queued != 2 {
		t.Errorf("queued %d updates, want 2", queued)
	}
}
