package ntpcli

import (
	"math"
	"time"
)

// log2Duration converts a poll or precision exponent to a duration.
func log2Duration(exp int8) time.Duration {
	return time.Duration(math.Ldexp(float64(time.Second), int(exp)))
}

func secondToDuration(a float64) time.Duration {
	return time.Duration(a * float64(time.Second))
}
