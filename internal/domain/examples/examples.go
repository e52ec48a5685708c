// Package examples provides the bundled illustrative datasets.
//
// The CSV files are embedded and parsed through the same loader used for
// uploads, so the examples obey the same validation rules.
package examples

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"math/rand"

	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/model"
)

//go:embed data/*.csv
var dataFS embed.FS

// Names of the bundled examples.
const (
	NameShots  = "xg-shots"   // three shots of falling quality
	NameMatch  = "demo-match" // default dataset before any upload
	NameZones  = "xt-zones"   // coarse expected-threat zone grid
	NameBinned = "xt-binned"  // seeded random passes binned by mean xT
)

// Synthetic sample parameters.
const (
	SyntheticSeed   = 42
	SyntheticEvents = 300
	SyntheticMaxXT  = 0.3
)

// threatZones is the illustrative xT grid, [row][col] with columns running
// toward the attacking goal.
var threatZones = [][]float64{ //nolint:gochecknoglobals // read-only, copied on access
	{0.00, 0.01, 0.02, 0.03},
	{0.01, 0.04, 0.08, 0.10},
	{0.02, 0.06, 0.12, 0.18},
	{0.03, 0.08, 0.18, 0.30},
}

// Shots returns the three-shot xG example.
func Shots(ctx context.Context, p model.Pitch) (*model.Dataset, error) {
	return load(ctx, "shots.csv", NameShots, p)
}

// Match returns the default mixed dataset.
func Match(ctx context.Context, p model.Pitch) (*model.Dataset, error) {
	return load(ctx, "match.csv", NameMatch, p)
}

func load(ctx context.Context, file, name string, p model.Pitch) (*model.Dataset, error) {
	raw, err := dataFS.ReadFile("data/" + file)
	if err != nil {
		return nil, fmt.Errorf("examples: read %s: %w", file, err)
	}
	res, err := ingest.Load(ctx, bytes.NewReader(raw), ingest.WithPitch(p), ingest.WithSource(name))
	if err != nil {
		return nil, fmt.Errorf("examples: load %s: %w", file, err)
	}
	return res.Dataset, nil
}

// ThreatZones returns a copy of the illustrative xT zone grid.
func ThreatZones() [][]float64 {
	out := make([][]float64, len(threatZones))
	for i, row := range threatZones {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Synthetic returns n passes placed uniformly on the pitch with xT drawn
// uniformly from [0, maxXT). The same seed always yields the same events.
func Synthetic(seed int64, n int, maxXT float64, p model.Pitch) []model.Event {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic sample data
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64() * p.Length
	}
	for i := range ys {
		ys[i] = rng.Float64() * p.Width
	}
	events := make([]model.Event, n)
	for i := range events {
		events[i] = model.NewPass(xs[i], ys[i], model.Float(rng.Float64()*maxXT))
		events[i].Row = i + 1
	}
	return events
}
