// Package view holds the presentation state of the explorer page: the
// Simple/Professional mode and the filters that only apply in Professional mode.
//
// The state is a value carried in the page URL. Nothing about it is stored
// on the server.
package view

import (
	"net/url"
	"strings"

	"github.com/okian/xgxt/internal/domain/model"
)

// Mode is the audience the page is rendered for.
type Mode string

// Modes.
const (
	Simple       Mode = "simple"
	Professional Mode = "professional"
)

// ParseMode returns the named mode, defaulting to Simple.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == Professional {
		return Professional
	}
	return Simple
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Professional {
		return Simple
	}
	return Professional
}

// Label is the human name of the mode.
func (m Mode) Label() string {
	if m == Professional {
		return "Professional"
	}
	return "Simple"
}

// Layer selects how the dataset is drawn.
type Layer string

// Layers.
const (
	Markers Layer = "markers"
	Heat    Layer = "heat"
)

// ParseLayer returns the named layer, defaulting to Markers.
func ParseLayer(s string) Layer {
	if Layer(strings.ToLower(strings.TrimSpace(s))) == Heat {
		return Heat
	}
	return Markers
}

// Query parameter names.
const (
	ParamMode     = "mode"
	ParamTypes    = "types"
	ParamLayer    = "layer"
	ParamFiltered = "f"
)

// State is the full presentation state.
type State struct {
	Mode  Mode
	Types map[model.EventType]bool
	Layer Layer
}

// Default returns the initial state: Simple mode with every type selected.
func Default() State {
	return State{Mode: Simple, Types: allTypes(), Layer: Markers}
}

func allTypes() map[model.EventType]bool {
	types := make(map[model.EventType]bool, len(model.EventTypes))
	for _, t := range model.EventTypes {
		types[t] = true
	}
	return types
}

// FromQuery decodes a state from URL query values. Types may be given as a
// comma separated list or as repeated parameters. When neither types nor the
// filter marker are present every type is selected; unknown names are ignored.
func FromQuery(q url.Values) State {
	s := State{
		Mode:  ParseMode(q.Get(ParamMode)),
		Layer: ParseLayer(q.Get(ParamLayer)),
	}
	raw, hasTypes := q[ParamTypes]
	_, filtered := q[ParamFiltered]
	if !hasTypes && !filtered {
		s.Types = allTypes()
		return s
	}
	s.Types = make(map[model.EventType]bool, len(model.EventTypes))
	for _, v := range raw {
		for _, name := range strings.Split(v, ",") {
			if t, err := model.ParseEventType(name); err == nil {
				s.Types[t] = true
			}
		}
	}
	return s
}

// Query encodes the state for use in links.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set(ParamMode, string(s.Mode))
	q.Set(ParamLayer, string(s.Layer))
	q.Set(ParamFiltered, "1")
	if names := s.selected(); len(names) > 0 {
		q.Set(ParamTypes, strings.Join(names, ","))
	}
	return q
}

func (s State) selected() []string {
	var names []string
	for _, t := range model.EventTypes {
		if s.Types[t] {
			names = append(names, string(t))
		}
	}
	return names
}

// Toggle switches mode and keeps the filters, so switching back restores them.
func (s State) Toggle() State {
	s.Mode = s.Mode.Toggle()
	return s
}

// Shows reports whether events of type t are visible. Simple mode shows all.
func (s State) Shows(t model.EventType) bool {
	if s.Mode == Simple {
		return true
	}
	return s.Types[t]
}

// EffectiveLayer is the layer actually drawn. Simple mode always uses markers.
func (s State) EffectiveLayer() Layer {
	if s.Mode == Simple {
		return Markers
	}
	return s.Layer
}

// Apply returns the visible events of ds. The dataset is not modified.
func (s State) Apply(ds *model.Dataset) []model.Event {
	return ds.Filter(s.Shows)
}

// Controls lists which page controls are available in a state.
type Controls struct {
	ToggleTo    Mode // mode reached by the toggle control
	TypeFilters bool // event-type checkboxes
	LayerSelect bool // markers/heat choice
	Upload      bool // file upload form
}

// Controls returns the controls for the current mode.
func (s State) Controls() Controls {
	pro := s.Mode == Professional
	return Controls{
		ToggleTo:    s.Mode.Toggle(),
		TypeFilters: pro,
		LayerSelect: pro,
		Upload:      true,
	}
}
