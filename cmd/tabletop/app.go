package main

import (
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-tabletop/config"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/camera"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/game_object"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/scene"
)

// Sway amplitudes for the headline model, in radians.
const (
	swayX = 0.015
	swayY = 0.025
)

// sway rocks a node gently about x and y as a function of scene time.
func sway(node game_object.GameObject, _, elapsed float32) {
	t := float64(elapsed)
	node.SetRotation(float32(math.Cos(t))*swayX, float32(math.Sin(t))*swayY, 0)
}

// populate adds every loaded model to the scene and sways the first one. Nil models failed to load and are skipped.
func populate(sc scene.Scene, models []model.Model) {
	swaying := false
	for _, m := range models {
		node := sc.Add(m)
		if node == nil {
			continue
		}
		if !swaying {
			sc.Animate(node, sway)
			swaying = true
		}
	}
}

// reloader applies config rewrites to the camera controller on the frame thread. A non-empty
// variant pins the camera variant over whatever the file names.
type reloader struct {
	post    func(fn func())
	ctrl    camera.CameraController
	current config.SceneConfig
	variant string
	load    func(path string) (config.SceneConfig, error)
}

func newReloader(post func(fn func()), ctrl camera.CameraController, current config.SceneConfig, variant string) *reloader {
	return &reloader{post: post, ctrl: ctrl, current: current, variant: variant, load: config.Load}
}

// run consumes watcher events until both channels close.
func (r *reloader) run(events <-chan string, errs <-chan error) {
	for events != nil || errs != nil {
		select {
		case path, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.reload(path)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[Config] watcher error: %v", err)
		}
	}
}

// reload parses path and queues its camera options for the next frame. The options start from the
// defaults, so overrides removed from the file are undone. Invalid files keep the previous config.
func (r *reloader) reload(path string) {
	cfg, err := r.load(path)
	if err != nil {
		log.Printf("[Config] reload rejected, keeping previous config: %v", err)
		return
	}
	if r.variant != "" {
		cfg.Variant = r.variant
	}
	if cfg.Variant != r.current.Variant {
		log.Printf("[Config] variant change %s -> %s applies camera constants only", r.current.Variant, cfg.Variant)
	}
	r.current = cfg

	options := cfg.CameraOptions()
	r.post(func() {
		r.ctrl.Apply(options...)
		log.Printf("[Config] applied %s", path)
	})
}
