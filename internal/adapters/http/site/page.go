package site

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/okian/xgxt/internal/domain/examples"
	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/internal/domain/overlay"
	"github.com/okian/xgxt/internal/domain/view"
)

//go:generate templ generate

// Learn-more links shown at the bottom of the page.
const (
	XGGuideURL = "https://statsbomb.com/articles/soccer/statsbomb-xg-model/"
	XTGuideURL = "https://karun.in/blog/expected-threat.html"
)

// maxWarnings caps the row warnings listed on the page.
const maxWarnings = 20

// layers are the choices of the layer select, in display order.
var layers = []view.Layer{view.Markers, view.Heat} //nolint:gochecknoglobals // read-only

// Figure is an image on the page.
type Figure struct {
	URL     string
	Alt     string
	Caption string
}

// PageData is everything the page shows.
type PageData struct {
	State         view.State
	Source        string
	Uploaded      bool
	Total         int
	Counts        map[model.EventType]int
	Preview       []model.Event
	Warnings      []ingest.RowIssue
	Error         string // upload failure shown above the form
	DefaultWeight float64
	Explainers    map[string]Figure // keyed by example figure name
}

// PageURL is the page link for a state.
func PageURL(s view.State) string {
	return "/?" + s.Query().Encode()
}

// DatasetFigureURL is the image link of the active dataset under s.
func DatasetFigureURL(s view.State) string {
	return "/figure.svg?" + s.Query().Encode()
}

// ExampleFigureURL is the image link of a bundled figure.
func ExampleFigureURL(name string) string {
	return "/figures/" + url.PathEscape(name) + ".svg"
}

// DefaultExplainers returns the bundled explainer figures keyed by name.
func DefaultExplainers() map[string]Figure {
	return map[string]Figure{
		examples.NameShots: {
			URL:     ExampleFigureURL(examples.NameShots),
			Alt:     "Three shots with xG 0.85, 0.35 and 0.10",
			Caption: "Bigger circles are better chances. A close, central shot is worth far more than one from distance.",
		},
		examples.NameZones: {
			URL:     ExampleFigureURL(examples.NameZones),
			Alt:     "Expected threat zone grid",
			Caption: "Zones near the opposing box carry the most threat.",
		},
		examples.NameBinned: {
			URL:     ExampleFigureURL(examples.NameBinned),
			Alt:     "Mean xT of simulated passes",
			Caption: "The same idea at finer resolution, averaged from 300 simulated passes drawn as faint dots.",
		},
	}
}

// stateURL links path with the query of s, for forms that must keep it.
func stateURL(path string, s view.State) templ.SafeURL {
	return templ.URL(path + "?" + s.Query().Encode())
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func sourceSummary(d PageData) string {
	return fmt.Sprintf("%d events (%d shots, %d passes).", d.Total, d.Counts[model.Shot], d.Counts[model.Pass])
}

func hasFilters(s view.State) bool {
	c := s.Controls()
	return c.TypeFilters || c.LayerSelect
}

func datasetFigure(d PageData) Figure {
	return Figure{URL: DatasetFigureURL(d.State), Alt: "Events of " + d.Source + " on the pitch"}
}

func warningCount(list []ingest.RowIssue) string {
	return fmt.Sprintf("%d row warning(s):", len(list))
}

// shownWarnings returns the warnings listed on the page.
func shownWarnings(list []ingest.RowIssue) []ingest.RowIssue {
	if len(list) <= maxWarnings {
		return list
	}
	return list[:maxWarnings]
}

func hiddenWarnings(list []ingest.RowIssue) int {
	return max(len(list)-maxWarnings, 0)
}

func typeLabel(t model.EventType) string { return string(t) + "s" }

func legendRange(l overlay.Legend) string {
	return fmt.Sprintf("%s %s–%s", l.Type.MetricName(), num(l.From), num(l.To))
}

func markerNote(weight float64) string {
	return "Marker area grows with the value. Events without a value are drawn at the minimum weight " + num(weight) + "."
}

// heatNote explains the heat layer: one ramp per type, split cells when both
// types are shown.
func heatNote(s view.State, weight float64) string {
	note := "Each cell shows the mean value of its events, darker is higher. Events without a value count as " + num(weight) + "."
	switch {
	case s.Shows(model.Shot) && s.Shows(model.Pass):
		return "Shots (xG) are shaded red on the left of each cell and passes (xT) green on the right. " + note
	case s.Shows(model.Shot):
		return "Shots are shaded red by xG. " + note
	default:
		return "Passes are shaded green by xT. " + note
	}
}
