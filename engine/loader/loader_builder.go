package loader

import (
	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
)

// LoaderBuilderOption configures a Loader in NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets how many goroutines LoadAsync spreads loads across. Values below 1 keep the default of 4.
func WithWorkers(workers int) LoaderBuilderOption {
	return func(l *loader) {
		if workers > 0 {
			l.workers = workers
		}
	}
}

// WithModel seeds the cache, so Load and LoadReader return m for key without reading anything.
//
// Parameters:
//   - key: the path or name m is cached under
//   - m: the model
//
// Returns:
//   - LoaderBuilderOption: the option
func WithModel(key string, m model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = m
	}
}
