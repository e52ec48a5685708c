package samplegen

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/xgxt/pkg/logger"
)

// Row is one generated event line.
type Row struct {
	ID    string
	X, Y  float64
	Type  string // "shot" or "pass"
	Value *float64
}

// Generate returns cfg.Shots shots followed by cfg.Passes passes. Output is
// fully determined by the config.
func Generate(cfg *Config) []Row {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible sample data
	rows := make([]Row, 0, cfg.Shots+cfg.Passes)
	for i := 0; i < cfg.Shots; i++ {
		x := shotMinX + rng.Float64()*(pitchLength-shotMinX)
		y := rng.Float64() * pitchWidth
		xg := shotXG(x, y)
		rows = append(rows, row(rng, cfg, "shot", x, y, xg))
	}
	for i := 0; i < cfg.Passes; i++ {
		x := rng.Float64() * pitchLength
		y := rng.Float64() * pitchWidth
		xt := maxPassXT * (x / pitchLength) * (x / pitchLength)
		rows = append(rows, row(rng, cfg, "pass", x, y, xt))
	}
	return rows
}

func row(rng *rand.Rand, cfg *Config, typ string, x, y, v float64) Row {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		id = uuid.Nil
	}
	r := Row{ID: id.String(), X: round(x), Y: round(y), Type: typ}
	if rng.Float64() >= cfg.MissingRate {
		v = round(v)
		r.Value = &v
	}
	if rng.Float64() < cfg.InvalidRate {
		r.X = invalidX
	}
	return r
}

// shotXG decays with distance from the centre of the goal.
func shotXG(x, y float64) float64 {
	d := math.Hypot(pitchLength-x, goalCenterY-y)
	return math.Max(xgFloor, xgAtGoalLine*math.Exp(-d/xgFalloff))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteCSV writes rows with the header used by the explorer's loader.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("samplegen: write header: %w", err)
	}
	for _, r := range rows {
		xg, xt := "", ""
		if r.Value != nil {
			v := strconv.FormatFloat(*r.Value, 'f', -1, 64)
			if r.Type == "pass" {
				xt = v
			} else {
				xg = v
			}
		}
		rec := []string{r.ID, num(r.X), num(r.Y), r.Type, xg, xt}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("samplegen: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("samplegen: flush: %w", err)
	}
	return nil
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// generateFile renders the configured rows to CSV bytes.
func generateFile(ctx context.Context, cfg *Config, stats *Stats) ([]byte, error) {
	rows := Generate(cfg)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	stats.RowsGenerated = len(rows)
	logger.Get().Info(ctx, "generated sample rows",
		logger.Int("shots", cfg.Shots),
		logger.Int("passes", cfg.Passes),
		logger.Int64("seed", cfg.Seed),
	)
	return buf.Bytes(), nil
}
