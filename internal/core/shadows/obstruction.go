package shadows

// obstruction is an angular wedge [near, far) blocked by a scanned cell
type obstruction struct {
	near, far float32
	opacity   float32
}

// obstructionSet is the per-octant list of wedges for the planar casters
type obstructionSet []obstruction

// obstructs reports whether angle lies strictly inside any wedge.
// An angle exactly on a wedge boundary is not shadowed.
func (s obstructionSet) obstructs(angle float32) bool {
	for i := range s {
		if angle > s[i].near && angle < s[i].far {
			return true
		}
	}
	return false
}

// covered reports whether a fully opaque wedge already spans [near, far]
func (s obstructionSet) covered(near, far float32) bool {
	for i := range s {
		if s[i].opacity >= 1 && s[i].near <= near && far <= s[i].far {
			return true
		}
	}
	return false
}

// boxSet is the per-octant list of angular boxes for the volumetric caster,
// stored flat as {hNear, hFar, vNear, vFar} per entry.
type boxSet struct {
	data []float32
}

const boxStride = 4

// Len returns the number of boxes
func (b *boxSet) Len() int { return len(b.data) / boxStride }

func (b *boxSet) reset() { b.data = b.data[:0] }

// covers reports whether the point (h, v) lies strictly inside any box
func (b *boxSet) covers(h, v float32) bool {
	d := b.data
	for i := 0; i+boxStride <= len(d); i += boxStride {
		if h > d[i] && h < d[i+1] && v > d[i+2] && v < d[i+3] {
			return true
		}
	}
	return false
}

// contains reports whether an existing box spans the whole given box
func (b *boxSet) contains(hNear, hFar, vNear, vFar float32) bool {
	d := b.data
	for i := 0; i+boxStride <= len(d); i += boxStride {
		if d[i] <= hNear && hFar <= d[i+1] && d[i+2] <= vNear && vFar <= d[i+3] {
			return true
		}
	}
	return false
}

// add appends a box without any checks
func (b *boxSet) add(hNear, hFar, vNear, vFar float32) {
	b.data = append(b.data, hNear, hFar, vNear, vFar)
}

// insert records a box, keeping the list short. A box already inside another
// one is dropped; a box with the same vertical bounds that overlaps an existing
// box horizontally extends that box in place; anything else is appended.
func (b *boxSet) insert(hNear, hFar, vNear, vFar float32) {
	if b.contains(hNear, hFar, vNear, vFar) {
		return
	}
	d := b.data
	for i := 0; i+boxStride <= len(d); i += boxStride {
		if d[i+2] != vNear || d[i+3] != vFar {
			continue
		}
		if hNear < d[i+1] && hFar > d[i] {
			d[i] = min(d[i], hNear)
			d[i+1] = max(d[i+1], hFar)
			return
		}
	}
	b.add(hNear, hFar, vNear, vFar)
}
