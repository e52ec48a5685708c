package overlay

import "github.com/okian/xgxt/internal/domain/model"

// BucketThresholds split metric values into color buckets: a value below
// BucketThresholds[i] falls in bucket i, anything larger in the last bucket.
var BucketThresholds = [...]float64{0.05, 0.15, 0.30, 0.50} //nolint:gochecknoglobals // read-only

// BucketCount is the number of shades per event type.
const BucketCount = len(BucketThresholds) + 1

// Palettes hold one light-to-dark color ramp per event type.
var palettes = map[model.EventType][BucketCount]string{ //nolint:gochecknoglobals // read-only
	model.Shot: {"#fcbba1", "#fc9272", "#fb6a4a", "#de2d26", "#a50f15"},
	model.Pass: {"#c7e9c0", "#a1d99b", "#74c476", "#31a354", "#006d2c"},
}

const fallbackColor = "#969696"

// Bucket returns the color bucket for a metric value.
func Bucket(v float64) int {
	for i, t := range BucketThresholds {
		if v < t {
			return i
		}
	}
	return len(BucketThresholds)
}

// Color returns the fill color for an event type and bucket.
func Color(t model.EventType, bucket int) string {
	p, ok := palettes[t]
	if !ok || bucket < 0 || bucket >= BucketCount {
		return fallbackColor
	}
	return p[bucket]
}

// Legend describes one color bucket for display.
type Legend struct {
	Type  model.EventType
	Color string
	From  float64
	To    float64
}

// LegendFor returns the bucket legend of an event type, lowest bucket first.
func LegendFor(t model.EventType) []Legend {
	out := make([]Legend, 0, BucketCount)
	from := 0.0
	for i := 0; i < BucketCount; i++ {
		to := 1.0
		if i < len(BucketThresholds) {
			to = BucketThresholds[i]
		}
		out = append(out, Legend{Type: t, Color: Color(t, i), From: from, To: to})
		from = to
	}
	return out
}
