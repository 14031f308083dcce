package cadastre

// Compass rose buckets, clockwise from north.
const (
	North = iota
	NorthNorthEast
	NorthEast
	EastNorthEast
	East
	EastSouthEast
	SouthEast
	SouthSouthEast
	South
	SouthSouthWest
	SouthWest
	WestSouthWest
	West
	WestNorthWest
	NorthWest
	NorthNorthWest

	compassPoints
)

type compassBucket struct {
	upper  float64
	bucket int
}

// compassRose lists the buckets after north in ascending order of their inclusive
// upper bound. Lower bounds are inclusive too, so an azimuth that sits exactly on a
// boundary belongs to the first bucket that accepts it.
var compassRose = [...]compassBucket{
	{33.75, NorthNorthEast},
	{56.25, NorthEast},
	{78.75, EastNorthEast},
	{101.25, East},
	{123.75, EastSouthEast},
	{146.25, SouthEast},
	{168.75, SouthSouthEast},
	{191.25, South},
	{213.75, SouthSouthWest},
	{236.25, SouthWest},
	{258.75, WestSouthWest},
	{281.25, West},
	{303.75, WestNorthWest},
	{326.25, NorthWest},
	{348.75, NorthNorthWest},
}

// CompassBucket returns the index of the 22.5° compass bucket holding az.
func CompassBucket(az float64) int {
	if az <= 11.25 || az >= 348.75 {
		return North
	}
	for _, b := range compassRose {
		if az <= b.upper {
			return b.bucket
		}
	}
	return North
}

// Classify returns the profile's label for the compass direction of az.
func Classify(az float64, p *Profile) string {
	return p.CompassLabels[CompassBucket(az)]
}
