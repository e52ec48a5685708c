// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// EventType classifies a pitch event.
type EventType string

// Supported event types.
const (
	Shot EventType = "shot"
	Pass EventType = "pass"
)

// EventTypes lists the supported types in display order.
var EventTypes = []EventType{Shot, Pass} //nolint:gochecknoglobals // read-only enumeration

// ParseEventType parses a case-insensitive event type name.
func ParseEventType(s string) (EventType, error) {
	switch EventType(strings.ToLower(strings.TrimSpace(s))) {
	case Shot:
		return Shot, nil
	case Pass:
		return Pass, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
}

// MetricName returns the metric carried by the event type: xG for shots, xT for passes.
func (t EventType) MetricName() string {
	if t == Pass {
		return "xT"
	}
	return "xG"
}

// Event is a single shot or pass placed on the pitch.
// Shots carry XG only and passes carry XT only; the other field is always nil.
type Event struct {
	X    float64   // pitch x, 0 at the left goal line
	Y    float64   // pitch y, 0 at the top touchline
	Type EventType // shot or pass
	XG   *float64  // expected goals, shots only
	XT   *float64  // expected threat, passes only
	Row  int       // 1-based data row in the source file
}

// NewShot returns a shot event. A nil xg marks the metric as missing.
func NewShot(x, y float64, xg *float64) Event {
	return Event{X: x, Y: y, Type: Shot, XG: xg}
}

// NewPass returns a pass event. A nil xt marks the metric as missing.
func NewPass(x, y float64, xt *float64) Event {
	return Event{X: x, Y: y, Type: Pass, XT: xt}
}

// Metric returns the type-appropriate metric value and whether it is present.
func (e Event) Metric() (float64, bool) {
	var v *float64
	switch e.Type {
	case Shot:
		v = e.XG
	case Pass:
		v = e.XT
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Float returns a pointer to v, for building events in code.
func Float(v float64) *float64 { return &v }
