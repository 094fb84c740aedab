package camera

// CameraBuilderOption configures a Camera in NewCamera.
type CameraBuilderOption func(*camera)

// WithController makes the camera follow ctrl. The matrices are built from the controller's
// transform once every option has been applied.
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *camera) {
		c.controller = ctrl
	}
}

// WithTransform builds the initial matrices from t. A controller set with WithController overrides it.
//
// Parameters:
//   - t: the initial transform
//
// Returns:
//   - CameraBuilderOption: the option
func WithTransform(t CameraTransform) CameraBuilderOption {
	return func(c *camera) {
		c.m = c.m.rebuild(t)
	}
}
