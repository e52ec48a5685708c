// Package render draws pitch figures as SVG.
package render

import "github.com/okian/xgxt/internal/domain/model"

// Default renderer configuration constants.
const (
	defaultScale  = 6  // pixels per pitch unit
	defaultMargin = 24 // pixels around the pitch
	titleHeight   = 28 // pixels reserved above the pitch for the title
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithPitch sets the pitch geometry.
func WithPitch(p model.Pitch) Option {
	return func(r *Renderer) {
		r.pitch = p
	}
}

// WithScale sets the number of pixels per pitch unit.
func WithScale(scale int) Option {
	return func(r *Renderer) {
		if scale > 0 {
			r.scale = scale
		}
	}
}

// WithMargin sets the blank border around the pitch in pixels.
func WithMargin(px int) Option {
	return func(r *Renderer) {
		if px >= 0 {
			r.margin = px
		}
	}
}

// WithTheme overrides the pitch colors.
func WithTheme(t Theme) Option {
	return func(r *Renderer) {
		r.theme = t
	}
}

// Theme holds the pitch colors.
type Theme struct {
	Background string
	Grass      string
	Lines      string
	Text       string
}

// DefaultTheme is a light pitch with grey lines.
func DefaultTheme() Theme {
	return Theme{
		Background: "#ffffff",
		Grass:      "#f7f7f2",
		Lines:      "#9e9e9e",
		Text:       "#212121",
	}
}
