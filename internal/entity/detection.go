package entity

// Direction is the coarse horizontal heading of the warmest region of a
// thermal frame. The numeric values are part of the response contract.
type Direction int

const (
	DirectionLeft   Direction = 1
	DirectionCentre Direction = 2
	DirectionRight  Direction = 3
	DirectionNone   Direction = 4
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionCentre:
		return "centre"
	case DirectionRight:
		return "right"
	case DirectionNone:
		return "none"
	default:
		return "unknown"
	}
}

type Classification struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ClassificationResult keeps labels in the order the classifier emitted them.
type ClassificationResult struct {
	Anomaly float64          `json:"anomaly"`
	Results []Classification `json:"results"`
}

type DetectionOutcome struct {
	HasPerson bool       `json:"hasPerson"`
	Direction *Direction `json:"direction,omitempty"`
}

func NewDetectionOutcome(hasPerson bool, direction *Direction) DetectionOutcome {
	if direction == nil {
		return DetectionOutcome{HasPerson: hasPerson}
	}
	d := *direction
	return DetectionOutcome{HasPerson: hasPerson, Direction: &d}
}
