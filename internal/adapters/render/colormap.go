package render

import (
	"fmt"
	"math"

	"github.com/okian/xgxt/internal/domain/model"
)

type ramp [][3]float64

// reds is a sequential white-to-dark-red ramp.
var reds = ramp{ //nolint:gochecknoglobals // read-only
	{255, 245, 240},
	{254, 224, 210},
	{252, 187, 161},
	{252, 146, 114},
	{251, 106, 74},
	{239, 59, 44},
	{203, 24, 29},
	{153, 0, 13},
}

// greens is a sequential white-to-dark-green ramp.
var greens = ramp{ //nolint:gochecknoglobals // read-only
	{247, 252, 245},
	{229, 245, 224},
	{199, 233, 192},
	{161, 217, 155},
	{116, 196, 118},
	{65, 171, 93},
	{35, 139, 69},
	{0, 90, 50},
}

// typeRamps matches the marker palettes: shots in reds, passes in greens.
var typeRamps = map[model.EventType]ramp{ //nolint:gochecknoglobals // read-only
	model.Shot: reds,
	model.Pass: greens,
}

// Ramp returns the red ramp color for t in [0,1]; t is clamped.
func Ramp(t float64) string { return reds.at(t) }

// TypeRamp returns the ramp color of an event type for t in [0,1]. Unknown
// types use the red ramp.
func TypeRamp(et model.EventType, t float64) string {
	if r, ok := typeRamps[et]; ok {
		return r.at(t)
	}
	return reds.at(t)
}

func (r ramp) at(t float64) string {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(r)-1)
	i := int(pos)
	if i >= len(r)-1 {
		c := r[len(r)-1]
		return hex(c[0], c[1], c[2])
	}
	f := pos - float64(i)
	a, b := r[i], r[i+1]
	return hex(lerp(a[0], b[0], f), lerp(a[1], b[1], f), lerp(a[2], b[2], f))
}

func lerp(a, b, f float64) float64 { return a + (b-a)*f }

func hex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", int(math.Round(r)), int(math.Round(g)), int(math.Round(b)))
}
