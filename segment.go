package cadastre

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Segment is one side of a boundary run.
type Segment struct {
	From, To    int // 1-based point positions
	Azimuth     float64
	AzimuthDMS  string
	Length      float64 // metres, two decimals
	Crossed     string  // names of crossed surfaces, ", " separated
	Description string
	Line        orb.LineString
}

// measure computes the bearing and length of the line from a to b.
func measure(a, b orb.Point) (az float64, length float64) {
	return NormalizeAzimuth(Azimuth(a, b)), Round(planar.Distance(a, b), 2)
}

// SegmentBuilder turns a range of ordered points into a closed run of segments.
type SegmentBuilder struct {
	Profile  *Profile
	Surfaces *PreparedSurfaces // optional
}

// Build computes the segments of part over points and appends them to table.
// The last point of the range links back to the first. Rows are appended only
// once every segment has been computed.
func (b *SegmentBuilder) Build(table *BoundaryTable, part Part, points []orb.Point) ([]Segment, error) {
	if err := part.Validate(len(points)); err != nil {
		return nil, err
	}

	run := points[part.Start-1 : part.End]
	segs := make([]Segment, 0, len(run))
	for i, start := range run {
		s := Segment{From: part.Start + i}
		var end orb.Point
		if i < len(run)-1 {
			end = run[i+1]
			s.To = part.Start + i + 1
		} else {
			end = run[0]
			s.To = part.Start
		}

		s.Line = orb.LineString{start, end}
		s.Azimuth, s.Length = measure(start, end)
		s.AzimuthDMS = ToDMS(s.Azimuth)
		crossed, err := b.Surfaces.Match(s.Line)
		if err != nil {
			return nil, fmt.Errorf("segment %d-%d: %w", s.From, s.To, err)
		}
		s.Crossed = crossed
		s.Description = Compose(s.Length, Classify(s.Azimuth, b.Profile), s.Crossed, b.Profile)
		segs = append(segs, s)
	}

	if table != nil {
		table.appendSegments(segs)
	}
	return segs, nil
}
