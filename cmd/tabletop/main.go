package main

import (
	"flag"
	"log"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/config"
	"github.com/Carmen-Shannon/oxy-tabletop/engine"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/camera"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/loader"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/scene"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/window"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/tanema/gween/ease"
)

// recenterDuration is how long the R key takes to glide the camera back to the origin, in seconds.
const recenterDuration = 0.6

func main() {
	variant := flag.String("variant", "", "camera variant: title or tabletop (overrides the config file)")
	configPath := flag.String("config", "", "scene.yaml to load (default: search the XDG config directories)")
	profile := flag.Bool("profile", false, "log frame statistics once per second")
	flag.Parse()

	cfg, cfgFile, err := config.Resolve(*configPath)
	if err != nil {
		log.Fatalf("[Tabletop] %v", err)
	}
	if *variant != "" {
		cfg.Variant = *variant
		if err := cfg.Validate(); err != nil {
			log.Fatalf("[Tabletop] -variant: %v", err)
		}
	}

	// ── Window + Renderer ───────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	if err != nil {
		log.Fatalf("[Tabletop] failed to open window: %v", err)
	}
	defer win.Close()

	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithMSAA(renderer.MSAA4x),
		renderer.WithPresentMode(renderer.PresentModeVSync),
	)
	if err != nil {
		log.Fatalf("[Tabletop] failed to create renderer: %v", err)
	}
	defer r.Release()

	// ── Camera ──────────────────────────────────────────────────────────
	ctrl := camera.NewCameraController(append(cfg.CameraOptions(), camera.WithViewport(win.Width(), win.Height()))...)
	cam := camera.NewCamera(camera.WithController(ctrl))

	// ── Pipeline + Scene ────────────────────────────────────────────────
	p, err := basePipeline()
	if err != nil {
		log.Fatalf("[Tabletop] %v", err)
	}
	sc, err := scene.NewScene(cfg.Variant, cam, r, p)
	if err != nil {
		log.Fatalf("[Tabletop] %v", err)
	}

	// ── Models ──────────────────────────────────────────────────────────
	ldr := loader.NewLoader(loader.BackendTypeGLTF)
	populate(sc, ldr.LoadAsync(cfg.Models...))

	// ── Engine ──────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithScene(0, sc),
		engine.WithProfiling(*profile),
	)

	win.SetKeyDownCallback(func(keyCode uint32) {
		if keyCode == common.KeyR {
			ctrl.RecenterTo(0, 0, recenterDuration, ease.OutCubic)
		}
	})

	if cfgFile != "" {
		w, err := config.Watch(cfgFile)
		if err != nil {
			log.Printf("[Tabletop] config hot reload disabled: %v", err)
		} else {
			defer w.Close()
			go newReloader(eng.Post, ctrl, cfg, *variant).run(w.Events, w.Errors)
		}
	}

	log.Printf("[Tabletop] starting %s variant with %d node(s)", cfg.Variant, sc.Count())
	eng.Run()
}

// basePipeline builds the hue-shift render pipeline from the embedded WGSL source.
func basePipeline() (pipeline.Pipeline, error) {
	vs, err := shader.NewShader("base_vs", shader.ShaderTypeVertex, shader.BaseSource)
	if err != nil {
		return nil, err
	}
	fs, err := shader.NewShader("base_fs", shader.ShaderTypeFragment, shader.BaseSource)
	if err != nil {
		return nil, err
	}

	p := pipeline.NewPipeline("base", pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs))
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
