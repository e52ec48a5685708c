package samplegen

// Pitch dimensions of generated rows.
const (
	pitchLength = 120.0
	pitchWidth  = 80.0
)

// Shot placement and xG curve.
const (
	shotMinX     = 84.0 // shots come from the final third
	goalCenterY  = 40.0
	xgAtGoalLine = 0.9
	xgFalloff    = 10.0 // yards over which xG drops by a factor of e
	xgFloor      = 0.01
)

// Pass xT grows toward the opposition goal.
const (
	maxPassXT = 0.3
)

// Off-pitch coordinate used for invalid rows.
const invalidX = 130.0

// Header is the first line of every generated file.
const Header = "event_id,x,y,event_type,xg,xT"
