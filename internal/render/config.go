package render

// Canvas sizes observed in deployments.
const (
	DefaultCanvasWidth  = 128
	DefaultCanvasHeight = 128

	// LargeCanvasSize is the high resolution profile. ICO output cannot
	// carry it; see ErrIconTooLarge.
	LargeCanvasSize = 512
)
