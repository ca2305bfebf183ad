package common

import (
	"math"
)

func MaxOf(vars ...float64) float64 {
	max := vars[0]

	for _, i := range vars {
		if max < i {
			max = i
		}
	}

	return max
}

// Clamp bounds v to [low, high].
func Clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}
