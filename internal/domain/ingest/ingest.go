// Package ingest parses tabular event files into datasets.
//
// The expected layout is a CSV with a header row naming at least the
// x, y and event_type columns. The xg and xT columns are optional per row.
// Header names are matched case-insensitively.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/xgxt/internal/domain/model"
)

// Column names recognised in the header, lower-cased.
const (
	ColX         = "x"
	ColY         = "y"
	ColEventType = "event_type"
	ColXG        = "xg"
	ColXT        = "xt"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{ColX, ColY, ColEventType} //nolint:gochecknoglobals // read-only

const utf8BOM = "\ufeff"

// Result is a successfully parsed file.
type Result struct {
	Dataset  *model.Dataset
	Rows     int        // data rows read, header excluded
	Warnings []RowIssue // row problems that did not refuse the file
}

// Rejected returns the number of rows dropped from the dataset.
func (r *Result) Rejected() int {
	n := 0
	for _, w := range r.Warnings {
		if w.Rejected {
			n++
		}
	}
	return n
}

type loader struct {
	pitch    model.Pitch
	maxRows  int
	source   string
	uploaded bool
	now      func() time.Time
}

type columns struct {
	x, y, eventType, xg, xt int
}

// Load reads a CSV from r and returns the parsed dataset.
//
// The file is refused with a *ValidationError when required columns are
// missing, when it holds no data rows, when it exceeds the row limit or when
// no row survives validation. Individual rows with unusable coordinates or an
// unknown event type are dropped and reported as warnings; rows with an
// unusable metric are kept with the metric treated as missing.
func Load(ctx context.Context, r io.Reader, opts ...Option) (*Result, error) {
	const op = "ingest.load"
	l := &loader{
		pitch:  model.StatsBomb(),
		source: "upload",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{Reason: "file is empty"}
	}
	if err != nil {
		return nil, malformed(err)
	}
	cols, missing := indexColumns(header)
	if len(missing) > 0 {
		return nil, &ValidationError{Reason: "missing required columns", Missing: missing}
	}

	res := &Result{Dataset: &model.Dataset{
		Source:   l.source,
		Uploaded: l.uploaded,
		LoadedAt: l.now(),
	}}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		res.Rows++
		if l.maxRows > 0 && res.Rows > l.maxRows {
			return nil, &ValidationError{Reason: fmt.Sprintf("file has more than %d rows", l.maxRows)}
		}
		ev, issues, ok := l.parseRow(res.Rows, rec, cols)
		res.Warnings = append(res.Warnings, issues...)
		if ok {
			res.Dataset.Events = append(res.Dataset.Events, ev)
		}
	}

	switch {
	case res.Rows == 0:
		return nil, &ValidationError{Reason: "file has no data rows"}
	case len(res.Dataset.Events) == 0:
		return nil, &ValidationError{Reason: "no valid rows", Issues: res.Warnings}
	}
	return res, nil
}

func malformed(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ValidationError{Reason: fmt.Sprintf("malformed csv at line %d: %v", pe.Line, pe.Err)}
	}
	// Not the file's fault: the reader itself failed.
	return fmt.Errorf("ingest.load: read: %w", err)
}

func indexColumns(header []string) (columns, []string) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	lookup := func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return -1
	}
	return columns{
		x:         lookup(ColX),
		y:         lookup(ColY),
		eventType: lookup(ColEventType),
		xg:        lookup(ColXG),
		xt:        lookup(ColXT),
	}, missing
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (l *loader) parseRow(row int, rec []string, cols columns) (model.Event, []RowIssue, bool) {
	reject := func(col, reason string) (model.Event, []RowIssue, bool) {
		return model.Event{}, []RowIssue{{Row: row, Column: col, Reason: reason, Rejected: true}}, false
	}

	x, err := parseCoord(cell(rec, cols.x))
	if err != nil {
		return reject(ColX, err.Error())
	}
	y, err := parseCoord(cell(rec, cols.y))
	if err != nil {
		return reject(ColY, err.Error())
	}
	if !l.pitch.Contains(x, y) {
		return reject("", fmt.Sprintf("coordinates (%g, %g) out of range 0-%g x 0-%g",
			x, y, l.pitch.Length, l.pitch.Width))
	}
	typ, err := model.ParseEventType(cell(rec, cols.eventType))
	if err != nil {
		return reject(ColEventType, err.Error())
	}

	ev := model.Event{X: x, Y: y, Type: typ, Row: row}
	col, raw := ColXG, cell(rec, cols.xg)
	if typ == model.Pass {
		col, raw = ColXT, cell(rec, cols.xt)
	}
	v, reason := parseMetric(raw)
	var issues []RowIssue
	if reason != "" {
		issues = append(issues, RowIssue{Row: row, Column: col, Reason: reason})
	}
	if typ == model.Pass {
		ev.XT = v
	} else {
		ev.XG = v
	}
	return ev, issues, true
}

func parseCoord(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("is empty")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return v, nil
}

// parseMetric returns nil for a missing value. A non-empty reason means the
// cell held something unusable and was treated as missing.
func parseMetric(raw string) (*float64, string) {
	if raw == "" {
		return nil, ""
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Sprintf("%q is not a number; treated as missing", raw)
	}
	if math.IsNaN(v) {
		return nil, ""
	}
	if v < 0 || v > 1 {
		return nil, fmt.Sprintf("%g outside [0,1]; treated as missing", v)
	}
	return &v, ""
}
