package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR     = 82  // R key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

// MouseButton identifies a pointer button independently of the windowing backend.
type MouseButton int

// Pointer buttons. Values match GLFW mouse button numbering.
const (
	MouseButtonPrimary   MouseButton = 0 // left
	MouseButtonSecondary MouseButton = 1 // right
	MouseButtonMiddle    MouseButton = 2
)

func (b MouseButton) String() string {
	switch b {
	case MouseButtonPrimary:
		return "primary"
	case MouseButtonSecondary:
		return "secondary"
	case MouseButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}
