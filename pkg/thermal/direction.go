package thermal

import (
	"ThermalVision/internal/entity"
)

// Column ranges of the three heading regions, half-open. Regions overlap and
// column 16 is in none of them.
var (
	leftRegion   = [2]int{0, 16}
	centreRegion = [2]int{8, 24}
	rightRegion  = [2]int{17, 32}
)

type Regions struct {
	Left   float64
	Centre float64
	Right  float64
}

// ColumnSums adds up the 24 rows of every column.
func ColumnSums(f Frame) [Columns]float64 {
	var sums [Columns]float64
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			sums[col] += f[row*Columns+col]
		}
	}
	return sums
}

func RegionSums(columns [Columns]float64) Regions {
	return Regions{
		Left:   sumRange(columns, leftRegion),
		Centre: sumRange(columns, centreRegion),
		Right:  sumRange(columns, rightRegion),
	}
}

func sumRange(columns [Columns]float64, r [2]int) float64 {
	var total float64
	for i := r[0]; i < r[1]; i++ {
		total += columns[i]
	}
	return total
}

// Heading picks the strictly hottest region, checked left, centre, right.
// Any tie for the top spot gives DirectionNone.
func (r Regions) Heading() entity.Direction {
	switch {
	case r.Left > r.Centre && r.Left > r.Right:
		return entity.DirectionLeft
	case r.Centre > r.Left && r.Centre > r.Right:
		return entity.DirectionCentre
	case r.Right > r.Left && r.Right > r.Centre:
		return entity.DirectionRight
	default:
		return entity.DirectionNone
	}
}

// Estimate returns the heading of the warmest part of the frame. Values past
// FrameSize are ignored.
func Estimate(f Frame) (entity.Direction, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return RegionSums(ColumnSums(f)).Heading(), nil
}
