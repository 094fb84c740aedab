package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
	"github.com/gabriel-vasile/mimetype"
)

// LoaderBackendType selects the model format a Loader reads.
type LoaderBackendType int

const (
	// BackendTypeGLTF reads glTF 2.0 JSON and GLB files.
	BackendTypeGLTF LoaderBackendType = iota
)

var errUnsupportedFormat = errors.New("unsupported model format")

const (
	mimeGLB  = "model/gltf-binary"
	mimeJSON = "application/json"

	poolQueueSize   = 256
	poolIdleTimeout = time.Second
)

// Loader imports model files and caches the result by path or name. Models are CPU-side; a Scene
// uploads their buffers.
type Loader interface {
	// Load imports a model file, or returns the model already cached under path. The backend is
	// picked by extension; files with another extension are identified by content.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - model.Model: the cached model
	//   - error: error if the file cannot be read, identified or decoded
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a stream and caches it under name.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the model data
	//   - isGLB: true when r holds a GLB container
	//
	// Returns:
	//   - model.Model: the cached model
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader, isGLB bool) (model.Model, error)

	// LoadAsync loads paths on the worker pool and waits for all of them. The result lines up with
	// paths; a failed load is logged and leaves nil.
	LoadAsync(paths ...string) []model.Model

	// Get returns the model cached under name, or nil.
	Get(name string) model.Model

	// Models returns a snapshot of the cache.
	Models() map[string]model.Model
}

type loader struct {
	mu      sync.RWMutex
	cache   map[string]model.Model
	backend loaderBackend

	workers  int
	poolOnce sync.Once
	pool     worker.DynamicWorkerPool
}

var _ Loader = &loader{}

// NewLoader creates a Loader for a model format.
//
// Parameters:
//   - backendType: the format to read
//   - options: LoaderBuilderOption functions applied in order
//
// Returns:
//   - Loader: the loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache:   make(map[string]model.Model),
		workers: 4,
	}
	if backendType == BackendTypeGLTF {
		l.backend = gltfBackend{}
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if m := l.Get(path); m != nil {
		return m, nil
	}

	var (
		imported *model.ImportedModel
		err      error
	)
	if l.backend != nil && l.backend.Handles(strings.ToLower(filepath.Ext(path))) {
		imported, err = l.backend.Import(path)
	} else {
		imported, err = l.importSniffed(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return l.store(path, imported), nil
}

// importSniffed identifies a file by content. JSON read this way only resolves embedded and data
// URI buffers.
func (l *loader) importSniffed(path string) (*model.ImportedModel, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting format: %w", err)
	}
	if l.backend == nil || !(mtype.Is(mimeGLB) || mtype.Is(mimeJSON)) {
		return nil, fmt.Errorf("%s: %w", mtype, errUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.backend.ImportReader(f, mtype.Is(mimeGLB))
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (model.Model, error) {
	if m := l.Get(name); m != nil {
		return m, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("loading %q: %w", name, errUnsupportedFormat)
	}

	imported, err := l.backend.ImportReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", name, err)
	}
	return l.store(name, imported), nil
}

func (l *loader) LoadAsync(paths ...string) []model.Model {
	results := make([]model.Model, len(paths))
	if len(paths) == 0 {
		return results
	}

	l.poolOnce.Do(func() {
		l.pool = worker.NewDynamicWorkerPool(l.workers, poolQueueSize, poolIdleTimeout)
	})

	var wg sync.WaitGroup
	wg.Add(len(paths))
	for i, path := range paths {
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				m, err := l.Load(path)
				if err != nil {
					log.Printf("[Loader] skipped model: %v", err)
					return nil, nil
				}
				results[i] = m
				return nil, nil
			},
		})
	}
	wg.Wait()
	return results
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.cache)
}

// store builds a Model and caches it under key. If a concurrent load cached key first, that model
// is returned instead.
func (l *loader) store(key string, imported *model.ImportedModel) model.Model {
	m := model.NewModel(model.WithImportedModel(imported))

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.cache[key]; ok {
		return existing
	}
	l.cache[key] = m
	log.Printf("[Loader] loaded %s: %d meshes, %d indices", key, len(m.Meshes()), m.IndexCount())
	return m
}
