package config

import (
	"log"

	"github.com/adrg/xdg"
)

// RelativePath is the configuration file looked up under each XDG config directory.
const RelativePath = "oxy-tabletop/scene.yaml"

// Locate searches the XDG config directories for RelativePath.
//
// Returns:
//   - string: the path of the first existing file, or "" when none exists
func Locate() string {
	path, err := xdg.SearchConfigFile(RelativePath)
	if err != nil {
		return ""
	}
	return path
}

// Resolve loads the configuration at path, or the located XDG file when path is empty.
// With no file at all it returns Default and an empty path.
//
// Parameters:
//   - path: an explicit config file, or "" to search
//
// Returns:
//   - SceneConfig: the configuration to run with
//   - string: the file it came from ("" for built-in defaults)
//   - error: if an existing file cannot be loaded
func Resolve(path string) (SceneConfig, string, error) {
	if path == "" {
		path = Locate()
		if path == "" {
			log.Println("[Config] no scene.yaml found, using built-in defaults")
			return Default(), "", nil
		}
	}

	cfg, err := Load(path)
	if err != nil {
		return SceneConfig{}, "", err
	}
	log.Printf("[Config] loaded %s (variant %s)", path, cfg.Variant)
	return cfg, path, nil
}
