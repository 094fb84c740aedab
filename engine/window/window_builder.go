package window

import "errors"

var errWindowClosed = errors.New("window is closed")

// WindowBuilderOption configures a window in NewWindow.
type WindowBuilderOption func(cfg *windowConfig)

type windowConfig struct {
	title               string
	width, height       int
	minWidth, minHeight int
	maxWidth, maxHeight int
}

func defaultWindowConfig() windowConfig {
	return windowConfig{
		title:     "oxy tabletop",
		width:     1280,
		height:    720,
		minWidth:  600,
		minHeight: 200,
		maxWidth:  1600,
		maxHeight: 1200,
	}
}

// normalize makes the size limits contain the initial size.
func (c *windowConfig) normalize() {
	c.width = max(c.width, 1)
	c.height = max(c.height, 1)
	c.minWidth = min(c.minWidth, c.width)
	c.minHeight = min(c.minHeight, c.height)
	c.maxWidth = max(c.maxWidth, c.width)
	c.maxHeight = max(c.maxHeight, c.height)
}

// WithTitle sets the title bar text.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: the option
func WithTitle(title string) WindowBuilderOption {
	return func(cfg *windowConfig) {
		cfg.title = title
	}
}

// WithWidth sets the initial window width in screen coordinates.
func WithWidth(width int) WindowBuilderOption {
	return func(cfg *windowConfig) {
		cfg.width = width
	}
}

// WithHeight sets the initial window height in screen coordinates.
func WithHeight(height int) WindowBuilderOption {
	return func(cfg *windowConfig) {
		cfg.height = height
	}
}

// WithMinSize sets the smallest size the user can resize the window to.
//
// Parameters:
//   - width: minimum width
//   - height: minimum height
//
// Returns:
//   - WindowBuilderOption: the option
func WithMinSize(width, height int) WindowBuilderOption {
	return func(cfg *windowConfig) {
		cfg.minWidth, cfg.minHeight = width, height
	}
}

// WithMaxSize sets the largest size the user can resize the window to.
//
// Parameters:
//   - width: maximum width
//   - height: maximum height
//
// Returns:
//   - WindowBuilderOption: the option
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(cfg *windowConfig) {
		cfg.maxWidth, cfg.maxHeight = width, height
	}
}
