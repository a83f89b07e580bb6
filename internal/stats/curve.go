package stats

import (
	"gonum.org/v1/gonum/floats"
)

type CurvePoint struct {
	Episode int     `json:"episode"`
	Value   float64 `json:"value"`
}

// LearningCurve returns the trailing moving average of rewards, one point per
// episode. Early points average over however many episodes exist so far.
func LearningCurve(rewards []float64, window int) []CurvePoint {
	if window <= 0 {
		window = 10
	}
	points := make([]CurvePoint, 0, len(rewards))
	for i := range rewards {
		start := i + 1 - window
		if start < 0 {
			start = 0
		}
		span := rewards[start : i+1]
		points = append(points, CurvePoint{
			Episode: i + 1,
			Value:   floats.Sum(span) / float64(len(span)),
		})
	}
	return points
}

// BestWindow returns the highest point of the curve, or false for an empty
// curve.
func BestWindow(points []CurvePoint) (CurvePoint, bool) {
	if len(points) == 0 {
		return CurvePoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Value > best.Value {
			best = p
		}
	}
	return best, true
}
