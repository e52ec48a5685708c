package overlay

import (
	"fmt"
	"math"

	"github.com/okian/xgxt/internal/domain/model"
)

// Marker is the visual form of one event.
type Marker struct {
	X, Y     float64         // pitch position
	Type     model.EventType // shot or pass
	Value    float64         // metric value, zero when absent
	HasValue bool            // false when the event carried no metric
	Weight   float64         // visual weight in [0,1]; marker area is proportional to it
	Radius   float64         // pitch units
	Bucket   int             // color bucket index
	Fill     string          // CSS color
	Opacity  float64
	Label    string // e.g. "xG: 0.45"
}

// Mapper turns events into markers.
type Mapper struct {
	maxRadius     float64
	minRadius     float64
	defaultWeight float64
	opacity       float64
}

// NewMapper creates a Mapper with configuration options.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		maxRadius:     defaultMaxRadius,
		minRadius:     defaultMinRadius,
		defaultWeight: defaultDefaultWeight,
		opacity:       defaultOpacity,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.minRadius > m.maxRadius {
		m.minRadius = m.maxRadius
	}
	return m
}

// DefaultWeight returns the weight given to events without a metric.
func (m *Mapper) DefaultWeight() float64 { return m.defaultWeight }

// Map returns one marker per event, in input order. Events lacking their
// type's metric get the default weight so every event stays visible.
func (m *Mapper) Map(events []model.Event) []Marker {
	out := make([]Marker, len(events))
	for i, e := range events {
		out[i] = m.marker(e)
	}
	return out
}

func (m *Mapper) marker(e model.Event) Marker {
	v, ok := e.Metric()
	weight := m.defaultWeight
	bucket := 0
	label := e.Type.MetricName() + ": n/a"
	if ok {
		weight = clamp01(v)
		bucket = Bucket(v)
		label = fmt.Sprintf("%s: %.2f", e.Type.MetricName(), v)
	}
	return Marker{
		X:        e.X,
		Y:        e.Y,
		Type:     e.Type,
		Value:    v,
		HasValue: ok,
		Weight:   weight,
		Radius:   m.Radius(weight),
		Bucket:   bucket,
		Fill:     Color(e.Type, bucket),
		Opacity:  m.opacity,
		Label:    label,
	}
}

// Radius converts a weight to a marker radius so that area grows linearly
// with weight, floored at the minimum radius.
func (m *Mapper) Radius(weight float64) float64 {
	r := m.maxRadius * math.Sqrt(clamp01(weight))
	return math.Max(r, m.minRadius)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
