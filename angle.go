package cadastre

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ToDMS formats decimal degrees as degrees, minutes and seconds, e.g. 45°30'0.0''.
// Seconds are rounded to three places and never carried into the minutes,
// so 59.9999 seconds prints as 60.0.
func ToDMS(deg float64) string {
	whole := math.Trunc(deg)
	frac := (deg - whole) * 60
	minutes := math.Trunc(frac)
	seconds := Round((frac-minutes)*60, 3)
	return fmt.Sprintf("%d°%d'%s''", int64(whole), int64(minutes), formatNumber(seconds))
}

// NormalizeAzimuth maps a raw bearing in (-180, 180] to the compass range [0, 360).
func NormalizeAzimuth(angle float64) float64 {
	if angle < 0 {
		return angle + 360
	}
	return angle
}

// Azimuth returns the planar bearing from a to b in degrees, clockwise from the
// positive y axis, in (-180, 180].
func Azimuth(a, b orb.Point) float64 {
	return math.Atan2(b[0]-a[0], b[1]-a[1]) * 180 / math.Pi
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// formatNumber prints v in its shortest form, always with a decimal point.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
