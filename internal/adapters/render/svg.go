package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/okian/xgxt/internal/domain/heat"
	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/internal/domain/overlay"
)

const (
	heatOpacity = 0.6
	labelOffset = 2.5 // pitch units below a marker centre
	spotRadius  = 0.4 // pitch units
)

// Figure is everything drawn on one pitch.
type Figure struct {
	Title      string
	Markers    []overlay.Marker
	Heat       *heat.Grid   // drawn beneath the pitch lines when set
	Layers     []heat.Layer // per-type grids, each in its own ramp
	ShowLabels bool         // print each marker's label under it
}

// Renderer draws figures. It holds no mutable state and is safe for
// concurrent use.
type Renderer struct {
	pitch  model.Pitch
	scale  int
	margin int
	theme  Theme
}

// NewRenderer creates a Renderer with configuration options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		pitch:  model.StatsBomb(),
		scale:  defaultScale,
		margin: defaultMargin,
		theme:  DefaultTheme(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pitch returns the geometry the renderer draws.
func (r *Renderer) Pitch() model.Pitch { return r.pitch }

// Size returns the pixel width and height of every figure.
func (r *Renderer) Size() (int, int) {
	w := r.px(r.pitch.Length) + 2*r.margin
	h := r.px(r.pitch.Width) + 2*r.margin + titleHeight
	return w, h
}

// Render writes fig as a standalone SVG document. The output depends only on
// the figure and the renderer options.
func (r *Renderer) Render(w io.Writer, fig Figure) error {
	if !r.pitch.Valid() {
		return fmt.Errorf("%w: invalid pitch %gx%g", ErrRender, r.pitch.Length, r.pitch.Width)
	}
	ew := &errWriter{w: w}
	width, height := r.Size()
	canvas := svg.New(ew)
	canvas.Startview(width, height, 0, 0, width, height)
	canvas.Title(fig.Title)
	canvas.Desc(fmt.Sprintf("%d markers", len(fig.Markers)))
	canvas.Rect(0, 0, width, height, "fill:"+r.theme.Background)
	if fig.Title != "" {
		canvas.Text(width/2, r.margin/2+titleHeight/2, fig.Title,
			"text-anchor:middle;font-family:sans-serif;font-size:16px;font-weight:bold;fill:"+r.theme.Text)
	}
	canvas.Rect(r.x(0), r.y(0), r.px(r.pitch.Length), r.px(r.pitch.Width), "fill:"+r.theme.Grass)
	if fig.Heat != nil {
		canvas.Gid("heat")
		r.drawGrid(canvas, fig.Heat, 0, 1, "heat", Ramp)
		canvas.Gend()
	}
	if len(fig.Layers) > 0 {
		r.drawLayers(canvas, fig.Layers)
	}
	r.drawLines(canvas)
	r.drawMarkers(canvas, fig.Markers, fig.ShowLabels)
	canvas.End()

	if ew.err != nil {
		return fmt.Errorf("%w: %w", ErrRender, ew.err)
	}
	return nil
}

// drawLayers draws each type grid in its own ramp. With several layers every
// cell is split into vertical stripes, one per layer in order.
func (r *Renderer) drawLayers(canvas *svg.SVG, layers []heat.Layer) {
	canvas.Gid("heat")
	for i, l := range layers {
		if l.Grid == nil {
			continue
		}
		et := l.Type
		canvas.Group(fmt.Sprintf(`class="heat-layer %s"`, et))
		r.drawGrid(canvas, l.Grid, i, len(layers), "heat "+string(et), func(t float64) string {
			return TypeRamp(et, t)
		})
		canvas.Gend()
	}
	canvas.Gend()
}

// drawGrid draws stripe of n of every filled cell, colored by value relative
// to the grid maximum.
func (r *Renderer) drawGrid(canvas *svg.SVG, g *heat.Grid, stripe, n int, class string, color func(float64) string) {
	top := g.Max()
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			v, ok := g.At(col, row)
			if !ok {
				continue
			}
			t := 0.0
			if top > 0 {
				t = v / top
			}
			cell := g.CellRect(r.pitch, col, row)
			w := cell.W / float64(n)
			x0, y0 := r.x(cell.X+w*float64(stripe)), r.y(cell.Y)
			x1, y1 := r.x(cell.X+w*float64(stripe+1)), r.y(cell.Y+cell.H)
			canvas.Rect(x0, y0, x1-x0, y1-y0,
				fmt.Sprintf(`class="%s" fill="%s" fill-opacity="%.2f"`, class, color(t), heatOpacity))
		}
	}
}

func (r *Renderer) drawLines(canvas *svg.SVG) {
	p := r.pitch
	m := p.Markings()
	stroke := "fill:none;stroke-width:2;stroke:" + r.theme.Lines
	spot := "stroke:none;fill:" + r.theme.Lines

	canvas.Gid("pitch")
	canvas.Rect(r.x(0), r.y(0), r.px(p.Length), r.px(p.Width), stroke)
	canvas.Line(r.x(m.HalfwayX), r.y(0), r.x(m.HalfwayX), r.y(p.Width), stroke)
	canvas.Circle(r.x(m.Centre[0]), r.y(m.Centre[1]), r.px(model.CentreCircleRadius), stroke)
	canvas.Circle(r.x(m.Centre[0]), r.y(m.Centre[1]), r.pxMin(spotRadius), spot)
	for _, box := range m.PenaltyAreas {
		r.rect(canvas, box, stroke)
	}
	for _, box := range m.SixYardBoxes {
		r.rect(canvas, box, stroke)
	}
	for _, goal := range m.Goals {
		r.rect(canvas, goal, stroke)
	}
	for _, s := range m.PenaltySpots {
		canvas.Circle(r.x(s[0]), r.y(s[1]), r.pxMin(spotRadius), spot)
	}
	r.penaltyArcs(canvas, m, stroke)
	canvas.Gend()
}

// penaltyArcs draws the part of each penalty-spot circle lying outside the
// penalty area.
func (r *Renderer) penaltyArcs(canvas *svg.SVG, m model.Markings, style string) {
	dx := model.PenaltyAreaDepth - model.PenaltySpotDist
	rad := model.CentreCircleRadius
	if dx >= rad {
		return
	}
	dy := math.Sqrt(rad*rad - dx*dx)
	midY := m.Centre[1]
	pr := r.px(rad)

	left := model.PenaltyAreaDepth
	canvas.Arc(r.x(left), r.y(midY-dy), pr, pr, 0, false, true, r.x(left), r.y(midY+dy), style)
	right := r.pitch.Length - model.PenaltyAreaDepth
	canvas.Arc(r.x(right), r.y(midY-dy), pr, pr, 0, false, false, r.x(right), r.y(midY+dy), style)
}

func (r *Renderer) drawMarkers(canvas *svg.SVG, markers []overlay.Marker, labels bool) {
	canvas.Gid("markers")
	for _, mk := range markers {
		canvas.Group(fmt.Sprintf(`class="marker %s"`, mk.Type))
		canvas.Title(mk.Label)
		canvas.Circle(r.x(mk.X), r.y(mk.Y), r.pxMin(mk.Radius),
			fmt.Sprintf(`fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="1"`, mk.Fill, mk.Opacity, r.theme.Text))
		if labels {
			canvas.Text(r.x(mk.X), r.y(mk.Y+mk.Radius+labelOffset), mk.Label,
				"text-anchor:middle;font-family:sans-serif;font-size:11px;fill:"+r.theme.Text)
		}
		canvas.Gend()
	}
	canvas.Gend()
}

func (r *Renderer) rect(canvas *svg.SVG, box model.Rect, style string) {
	x0, y0 := r.x(box.X), r.y(box.Y)
	canvas.Rect(x0, y0, r.x(box.X+box.W)-x0, r.y(box.Y+box.H)-y0, style)
}

// px converts a pitch length to pixels.
func (r *Renderer) px(v float64) int {
	return int(math.Round(v * float64(r.scale)))
}

// pxMin converts a pitch length to pixels, never returning less than one.
func (r *Renderer) pxMin(v float64) int {
	if p := r.px(v); p > 1 {
		return p
	}
	return 1
}

func (r *Renderer) x(v float64) int { return r.margin + r.px(v) }

func (r *Renderer) y(v float64) int { return r.margin + titleHeight + r.px(v) }

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
