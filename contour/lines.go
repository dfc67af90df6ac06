package contour

import (
	"github.com/chewxy/math32"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/colormap"
)

// LineSet is extracted iso-line geometry. Segments are grouped by
// iso-value: the first Counts[0] segments belong to the first iso-value,
// the next Counts[1] to the second and so on. Segments are independent
// point pairs, not stitched polylines; stitching, if wanted, is a
// consumer concern.
type LineSet struct {
	// Positions holds 3 floats per point; consecutive point pairs form
	// one drawn segment.
	Positions []float32
	// Colors holds one RGB triple per iso-value, in input order.
	Colors []float32
	// Counts holds the number of segments emitted per iso-value, in
	// input order.
	Counts []int
	// Fractions holds two entries per segment: the interpolation
	// fraction along each of the two mesh edges the segment endpoints
	// were found on.
	Fractions []float32
}

// SegmentCount returns the total number of segments over all iso-values.
func (ls *LineSet) SegmentCount() int { return len(ls.Positions) / 6 }

// LineExtractor traces iso-value crossings over a scalar field, one
// interpolated line segment per crossing triangle.
//
// Min and Max map the scalar field into normalized [0,1] color space.
// Leaving both zero selects the range observed over the scalar array.
type LineExtractor struct {
	Min, Max float32
}

// Extract visits every triangle once per iso-value and emits a segment for
// each triangle the iso-value crosses. A vertex whose scalar equals the
// iso-value classifies as above it; the >= tie-break is applied uniformly
// so a vertex-touching crossing never yields two segments. Every segment of
// an iso-value is colored from lut at the normalized iso-value.
func (le *LineExtractor) Extract(m *isomesh.Mesh, scalarName string, isoValues []float32, lut *colormap.LookupTable) (*LineSet, error) {
	scalars, err := meshScalars(m, scalarName)
	if err != nil {
		return nil, err
	}
	if lut == nil {
		return nil, errNilLookupTable
	}
	smin, smax := resolveRange(le.Min, le.Max, scalars)
	nt := m.TriangleCount()
	ls := &LineSet{
		Colors: make([]float32, 0, 3*len(isoValues)),
		Counts: make([]int, 0, len(isoValues)),
	}
	for _, iso := range isoValues {
		nseg := 0
		for t := 0; t < nt; t++ {
			tri := m.Triangle(t)
			s0 := scalars[tri[0]]
			s1 := scalars[tri[1]]
			s2 := scalars[tri[2]]
			if math32.IsNaN(s0) || math32.IsNaN(s1) || math32.IsNaN(s2) {
				continue // No crossing is defined through unknown data.
			}
			a0, a1, a2 := s0 >= iso, s1 >= iso, s2 >= iso
			if a0 == a1 && a1 == a2 {
				continue // Triangle entirely above or below the iso-value.
			}
			// The lone vertex sits alone on its side of the iso-value;
			// both crossing edges share it.
			var lone, oa, ob uint32
			switch {
			case a0 != a1 && a0 != a2:
				lone, oa, ob = tri[0], tri[1], tri[2]
			case a1 != a0 && a1 != a2:
				lone, oa, ob = tri[1], tri[2], tri[0]
			default:
				lone, oa, ob = tri[2], tri[0], tri[1]
			}
			lv := vertex{p: m.Position(int(lone)), s: scalars[lone]}
			pa, fa := lerpVert(lv, vertex{p: m.Position(int(oa)), s: scalars[oa]}, iso)
			pb, fb := lerpVert(lv, vertex{p: m.Position(int(ob)), s: scalars[ob]}, iso)
			ls.Positions = append(ls.Positions,
				pa.p.X, pa.p.Y, pa.p.Z,
				pb.p.X, pb.p.Y, pb.p.Z,
			)
			ls.Fractions = append(ls.Fractions, fa, fb)
			nseg++
		}
		c := lut.Sample(normalizeScalar(iso, smin, smax))
		ls.Colors = append(ls.Colors, c.X, c.Y, c.Z)
		ls.Counts = append(ls.Counts, nseg)
	}
	isomesh.Logger().Debug("contour.LineExtractor",
		"triangles", nt, "isovalues", len(isoValues), "segments", ls.SegmentCount())
	return ls, nil
}
