package render

import (
	"math"
)

// niceTicks returns at most n+1 round tick values covering [min, max],
// mirroring a fixed-bin axis locator.
func niceTicks(min, max float64, n int) []float64 {
	span := max - min
	if span <= 0 || n < 1 {
		return nil
	}

	step := niceNum(span/float64(n), true)
	start := math.Ceil(min/step) * step

	var ticks []float64
	for v := start; v <= max+step*1e-6; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// niceNum rounds a span to a 1/2/5 multiple of a power of ten.
func niceNum(x float64, round bool) float64 {
	exp := math.Floor(math.Log10(x))
	frac := x / math.Pow(10, exp)

	var nice float64
	if round {
		switch {
		case frac < 1.5:
			nice = 1
		case frac < 3:
			nice = 2
		case frac < 7:
			nice = 5
		default:
			nice = 10
		}
	} else {
		switch {
		case frac <= 1:
			nice = 1
		case frac <= 2:
			nice = 2
		case frac <= 5:
			nice = 5
		default:
			nice = 10
		}
	}
	return nice * math.Pow(10, exp)
}
