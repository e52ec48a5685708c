package model

// Pitch is the fixed playing-field geometry used to place events.
// Coordinates follow the StatsBomb convention: origin at the top-left corner,
// x running toward the right-hand goal and y running down.
type Pitch struct {
	Length float64 // goal line to goal line
	Width  float64 // touchline to touchline
}

// Standard marking sizes in pitch units (yards).
const (
	PenaltyAreaDepth   = 18.0
	PenaltyAreaWidth   = 44.0
	SixYardDepth       = 6.0
	SixYardWidth       = 20.0
	PenaltySpotDist    = 12.0
	CentreCircleRadius = 10.0
	GoalWidth          = 8.0
)

// StatsBomb returns the 120 x 80 reference pitch.
func StatsBomb() Pitch {
	return Pitch{Length: 120, Width: 80}
}

// Valid reports whether the geometry can hold the standard markings.
func (p Pitch) Valid() bool {
	return p.Length > 2*PenaltyAreaDepth && p.Width > PenaltyAreaWidth
}

// Contains reports whether (x, y) lies on the pitch, edges included.
func (p Pitch) Contains(x, y float64) bool {
	return x >= 0 && x <= p.Length && y >= 0 && y <= p.Width
}

// Rect is an axis-aligned rectangle in pitch units.
type Rect struct {
	X, Y, W, H float64
}

// Markings are the derived line features of a pitch.
type Markings struct {
	PenaltyAreas [2]Rect
	SixYardBoxes [2]Rect
	Goals        [2]Rect
	PenaltySpots [2][2]float64
	Centre       [2]float64
	HalfwayX     float64
}

// Markings derives the standard line features from the pitch geometry.
func (p Pitch) Markings() Markings {
	midY := p.Width / 2
	paY := midY - PenaltyAreaWidth/2
	syY := midY - SixYardWidth/2
	goalY := midY - GoalWidth/2
	const goalDepth = 2.0
	return Markings{
		PenaltyAreas: [2]Rect{
			{X: 0, Y: paY, W: PenaltyAreaDepth, H: PenaltyAreaWidth},
			{X: p.Length - PenaltyAreaDepth, Y: paY, W: PenaltyAreaDepth, H: PenaltyAreaWidth},
		},
		SixYardBoxes: [2]Rect{
			{X: 0, Y: syY, W: SixYardDepth, H: SixYardWidth},
			{X: p.Length - SixYardDepth, Y: syY, W: SixYardDepth, H: SixYardWidth},
		},
		Goals: [2]Rect{
			{X: -goalDepth, Y: goalY, W: goalDepth, H: GoalWidth},
			{X: p.Length, Y: goalY, W: goalDepth, H: GoalWidth},
		},
		PenaltySpots: [2][2]float64{
			{PenaltySpotDist, midY},
			{p.Length - PenaltySpotDist, midY},
		},
		Centre:   [2]float64{p.Length / 2, midY},
		HalfwayX: p.Length / 2,
	}
}
