// Package heat bins pitch events into grids of metric values.
package heat

import (
	"errors"
	"fmt"

	"github.com/okian/xgxt/internal/domain/model"
)

// Sentinel kinds for heat errors.
var (
	ErrInvalidGrid = errors.New("invalid grid")
)

// Grid is a Cols x Rows lattice over the pitch. Column 0 touches the left
// goal line and row 0 the top touchline. Cells without data are empty.
type Grid struct {
	Cols, Rows int
	values     []float64
	filled     []bool
	counts     []int
}

// NewGrid returns an empty grid.
func NewGrid(cols, rows int) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, cols, rows)
	}
	return &Grid{
		Cols:   cols,
		Rows:   rows,
		values: make([]float64, cols*rows),
		filled: make([]bool, cols*rows),
		counts: make([]int, cols*rows),
	}, nil
}

// At returns the value of a cell and whether it holds data.
func (g *Grid) At(col, row int) (float64, bool) {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return 0, false
	}
	i := row*g.Cols + col
	return g.values[i], g.filled[i]
}

// Set stores a value in a cell. Out-of-range cells are ignored.
func (g *Grid) Set(col, row int, v float64) {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return
	}
	i := row*g.Cols + col
	g.values[i] = v
	g.filled[i] = true
}

// Max returns the largest filled value, or zero for an empty grid.
func (g *Grid) Max() float64 {
	best := 0.0
	for i, ok := range g.filled {
		if ok && g.values[i] > best {
			best = g.values[i]
		}
	}
	return best
}

// Filled returns the number of cells holding data.
func (g *Grid) Filled() int {
	n := 0
	for _, ok := range g.filled {
		if ok {
			n++
		}
	}
	return n
}

// Count returns how many events were binned into a cell.
func (g *Grid) Count(col, row int) int {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return 0
	}
	return g.counts[row*g.Cols+col]
}

// Events returns the number of events binned into the grid.
func (g *Grid) Events() int {
	n := 0
	for _, c := range g.counts {
		n += c
	}
	return n
}

// CellRect returns the pitch area covered by a cell.
func (g *Grid) CellRect(p model.Pitch, col, row int) model.Rect {
	w := p.Length / float64(g.Cols)
	h := p.Width / float64(g.Rows)
	return model.Rect{X: float64(col) * w, Y: float64(row) * h, W: w, H: h}
}

// Weigher returns the value an event contributes to its cell.
type Weigher func(model.Event) float64

// MetricOr weighs an event by its metric, or by fallback when it has none.
func MetricOr(fallback float64) Weigher {
	return func(e model.Event) float64 {
		if v, ok := e.Metric(); ok {
			return v
		}
		return fallback
	}
}

// BinMean averages the weight of events falling in each cell. Events outside
// the pitch are skipped; points on the far edges land in the last column or
// row. A nil weigher counts events without a metric as zero.
func BinMean(events []model.Event, p model.Pitch, cols, rows int, weigh Weigher) (*Grid, error) {
	g, err := NewGrid(cols, rows)
	if err != nil {
		return nil, err
	}
	if p.Length <= 0 || p.Width <= 0 {
		return nil, fmt.Errorf("%w: pitch %gx%g", ErrInvalidGrid, p.Length, p.Width)
	}
	if weigh == nil {
		weigh = MetricOr(0)
	}
	sums := make([]float64, cols*rows)
	for _, e := range events {
		if !p.Contains(e.X, e.Y) {
			continue
		}
		i := index(e.Y, p.Width, rows)*cols + index(e.X, p.Length, cols)
		sums[i] += weigh(e)
		g.counts[i]++
	}
	for i, n := range g.counts {
		if n > 0 {
			g.values[i] = sums[i] / float64(n)
			g.filled[i] = true
		}
	}
	return g, nil
}

// ByType bins each event type into its own grid, in model.EventTypes order.
// Types with no events are left out.
func ByType(events []model.Event, p model.Pitch, cols, rows int, weigh Weigher) ([]Layer, error) {
	var out []Layer
	for _, t := range model.EventTypes {
		var typed []model.Event
		for _, e := range events {
			if e.Type == t {
				typed = append(typed, e)
			}
		}
		if len(typed) == 0 {
			continue
		}
		g, err := BinMean(typed, p, cols, rows, weigh)
		if err != nil {
			return nil, err
		}
		out = append(out, Layer{Type: t, Grid: g})
	}
	return out, nil
}

// Layer is the grid of one event type.
type Layer struct {
	Type model.EventType
	Grid *Grid
}

func index(v, extent float64, n int) int {
	i := int(v / extent * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Expand repeats every cell of a coarse zone grid factor times along both
// axes. zones is indexed [row][col] and must be rectangular.
func Expand(zones [][]float64, factor int) (*Grid, error) {
	if len(zones) == 0 || len(zones[0]) == 0 || factor <= 0 {
		return nil, fmt.Errorf("%w: empty zones or factor %d", ErrInvalidGrid, factor)
	}
	cols := len(zones[0])
	for r, row := range zones {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidGrid, r, len(row), cols)
		}
	}
	g, err := NewGrid(cols*factor, len(zones)*factor)
	if err != nil {
		return nil, err
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			g.Set(c, r, zones[r/factor][c/factor])
		}
	}
	return g, nil
}
