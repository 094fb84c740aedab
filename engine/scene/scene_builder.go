package scene

import (
	"github.com/Carmen-Shannon/oxy-tabletop/common"
)

// SceneBuilderOption configures a Scene in NewScene.
type SceneBuilderOption func(s *scene)

// WithBackground sets the clear colour. Scenes default to DefaultBackground.
func WithBackground(c common.Color) SceneBuilderOption {
	return func(s *scene) { s.background = c }
}

// WithBackgroundHex is WithBackground for a packed 0xRRGGBB colour.
func WithBackgroundHex(hex uint32) SceneBuilderOption {
	return WithBackground(common.ColorFromHex(hex))
}
