// Package contour generates iso-lines and filled iso-band geometry from
// per-vertex scalar fields on triangle meshes. Both generators walk the
// mesh one triangle at a time ("marching triangles") and emit flat
// position/index/color buffers whose ownership transfers to the caller.
package contour

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/isomesh"
)

var errNilLookupTable = errors.New("nil lookup table")

// vertex is a (position, scalar, normal) tuple. Triangle classification
// works on fresh stack copies of these rather than aliased buffer views.
type vertex struct {
	p ms3.Vec
	s float32
	n ms3.Vec
}

// lerpVert interpolates a vertex along the edge (a,b) at scalar value iso.
// Callers guarantee a.s != b.s. The returned fraction is the position along
// the edge, 0 at a and 1 at b.
func lerpVert(a, b vertex, iso float32) (vertex, float32) {
	t := (iso - a.s) / (b.s - a.s)
	return vertex{
		p: ms3.Add(a.p, ms3.Scale(t, ms3.Sub(b.p, a.p))),
		s: iso,
		n: unitOrUp(ms3.Add(a.n, ms3.Scale(t, ms3.Sub(b.n, a.n)))),
	}, t
}

func unitOrUp(n ms3.Vec) ms3.Vec {
	len2 := ms3.Norm(n)
	if len2 < 6e-7 || math32.IsNaN(len2) {
		return ms3.Vec{Z: 1}
	}
	return ms3.Scale(1/len2, n)
}

// ms3Vec reads vertex i of a flat 3-component float buffer.
func ms3Vec(buf []float32, i int) ms3.Vec {
	return ms3.Vec{X: buf[3*i], Y: buf[3*i+1], Z: buf[3*i+2]}
}

// normalizeScalar maps v from [smin,smax] into [0,1], clamped. A zero
// scalar range is a legitimate state (constant field) and maps to the
// middle of the color map.
func normalizeScalar(v, smin, smax float32) float32 {
	if math32.IsNaN(v) {
		return v
	}
	if smax <= smin {
		return 0.5
	}
	t := (v - smin) / (smax - smin)
	if t < 0 {
		return 0
	} else if t > 1 {
		return 1
	}
	return t
}

// resolveRange returns the caller-supplied scalar range or, when both are
// zero, the range observed over the scalar array.
func resolveRange(smin, smax float32, scalars []float32) (float32, float32) {
	if smin == 0 && smax == 0 {
		return isomesh.ScalarRange(scalars)
	}
	return smin, smax
}

// meshScalars fetches the triangle source geometry and named scalar field,
// validating the inputs shared by both generators.
func meshScalars(m *isomesh.Mesh, scalarName string) ([]float32, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", isomesh.ErrMissingGeometry)
	}
	scalars, err := m.Scalars(scalarName)
	if err != nil {
		return nil, err
	}
	if m.TriangleCount() == 0 {
		return nil, fmt.Errorf("%w: mesh has no triangles", isomesh.ErrMissingGeometry)
	}
	return scalars, nil
}
