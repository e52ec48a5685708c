// Package overlay maps pitch events to drawable markers.
package overlay

// Default overlay configuration constants, in pitch units.
const (
	defaultMaxRadius     = 4.0
	defaultMinRadius     = 0.5
	defaultDefaultWeight = 0.05
	defaultOpacity       = 0.6
)

// Option applies a configuration option to the Mapper.
type Option func(*Mapper)

// WithMaxRadius sets the radius drawn for a metric value of 1.
func WithMaxRadius(r float64) Option {
	return func(m *Mapper) {
		if r > 0 {
			m.maxRadius = r
		}
	}
}

// WithMinRadius sets the smallest radius ever drawn.
func WithMinRadius(r float64) Option {
	return func(m *Mapper) {
		if r > 0 {
			m.minRadius = r
		}
	}
}

// WithDefaultWeight sets the weight used for events without a metric.
// Values outside (0, 1] are ignored.
func WithDefaultWeight(w float64) Option {
	return func(m *Mapper) {
		if w > 0 && w <= 1 {
			m.defaultWeight = w
		}
	}
}

// WithOpacity sets the fill opacity of markers.
func WithOpacity(o float64) Option {
	return func(m *Mapper) {
		if o > 0 && o <= 1 {
			m.opacity = o
		}
	}
}
