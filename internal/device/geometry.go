package device

import (
	"math"

	"touchpad/internal/tap"
)

// MMGeometry converts device-unit deltas into millimetres using a
// fixed per-axis resolution, generalizing a raw
// math.Sqrt(math.Pow(...)) pixel-distance calculation to the device's
// actual ABS_MT_POSITION_X/Y resolution instead of assuming device
// units are already comparable to screen pixels.
type MMGeometry struct {
	// UnitsPerMMX/Y are the device's resolution along each axis, as
	// reported by EVIOCGABS (ABS_MT_POSITION_X/Y .resolution). Devices
	// that don't report a resolution fall back to 1:1 scaling.
	UnitsPerMMX float64
	UnitsPerMMY float64
}

// NewMMGeometry builds an MMGeometry, defaulting either axis to 1 unit
// per mm when the device didn't report a usable resolution.
func NewMMGeometry(unitsPerMMX, unitsPerMMY float64) *MMGeometry {
	if unitsPerMMX <= 0 {
		unitsPerMMX = 1
	}
	if unitsPerMMY <= 0 {
		unitsPerMMY = 1
	}
	return &MMGeometry{UnitsPerMMX: unitsPerMMX, UnitsPerMMY: unitsPerMMY}
}

// DistanceMM implements tap.Geometry (tp_phys_delta / length_in_mm).
func (g *MMGeometry) DistanceMM(current, initial tap.Point) float64 {
	dx := (current.X - initial.X) / g.UnitsPerMMX
	dy := (current.Y - initial.Y) / g.UnitsPerMMY
	return math.Sqrt(dx*dx + dy*dy)
}
