package common

// Logical screen size. The window is scaled to fit.
const (
	BaseWidth  = 640
	BaseHeight = 360
)

// TPS is the update rate flows are ticked at, and FrameTime one tick in
// seconds.
const (
	TPS       = 60
	FrameTime = 1.0 / TPS
)
