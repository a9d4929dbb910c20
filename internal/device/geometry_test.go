package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"touchpad/internal/tap"
)

func TestMMGeometryDistance(t *testing.T) {
	g := NewMMGeometry(100, 100) // 100 device units per mm

	d := g.DistanceMM(tap.Point{X: 300, Y: 100}, tap.Point{X: 100, Y: 100})
	require.InDelta(t, 2.0, d, 0.0001)
}

func TestMMGeometryDefaultsToOneToOne(t *testing.T) {
	g := NewMMGeometry(0, -1)
	require.Equal(t, 1.0, g.UnitsPerMMX)
	require.Equal(t, 1.0, g.UnitsPerMMY)
}
