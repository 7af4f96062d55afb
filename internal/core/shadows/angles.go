package shadows

import (
	"sync"

	"github.com/chewxy/math32"
)

// MaxRadius is the largest radius (in scan cells) the angle table covers
const MaxRadius = 30

// octantSpan is the size of one octant in radians. Angles are divided by it,
// so an octant spans [0,1] and a 90 degree quadrant spans [0,2].
const octantSpan = math32.Pi / 4

// Lattice indices into cellAngles. Along the major (ring) axis a point sits on
// the close edge, the middle or the distant edge of the cell; along the minor
// (position) axis it sits on the near edge, the middle or the far edge.
const (
	majClose = 0
	majMid   = 1
	majDist  = 2

	minNear = 0
	minMid  = 1
	minFar  = 2
)

// cellAngles holds the normalised angles of the 3x3 lattice of half-cell
// offsets around one cell, indexed [major][minor].
type cellAngles [3][3]float32

// center is the angle of the cell centre
func (a *cellAngles) center() float32 { return a[majMid][minMid] }

// angleTable is indexed [ring][position] with 0 <= position <= ring
type angleTable [MaxRadius + 1][]cellAngles

// angles returns the table, building it on first use
var angles = sync.OnceValue(buildAngleTable)

func buildAngleTable() *angleTable {
	var t angleTable
	for ring := 0; ring <= MaxRadius; ring++ {
		row := make([]cellAngles, ring+1)
		for pos := 0; pos <= ring; pos++ {
			for i := 0; i < 3; i++ {
				major := float32(ring) + 0.5*float32(i-1)
				for j := 0; j < 3; j++ {
					minor := float32(pos) + 0.5*float32(j-1)
					row[pos][i][j] = normalizedAngle(minor, major)
				}
			}
		}
		t[ring] = row
	}
	return &t
}

// normalizedAngle converts the direction (major, minor) into octant units
func normalizedAngle(minor, major float32) float32 {
	return math32.Atan2(minor, major) / octantSpan
}

// anglesAt returns the table entry for one canonical cell
func anglesAt(ring, pos int) *cellAngles {
	return &angles()[ring][pos]
}
