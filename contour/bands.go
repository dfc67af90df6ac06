package contour

import (
	"fmt"
	"slices"
	"sync"

	"github.com/chewxy/math32"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/colormap"
)

// BandMesh is re-triangulated band-colored surface geometry. Vertices are
// deliberately duplicated along band seams since adjacent bands carry
// different colors there; weld normals afterwards for seamless shading.
type BandMesh struct {
	Positions []float32 // 3 floats per vertex.
	Indices   []uint32  // Triangle list.
	Colors    []float32 // RGB per vertex.
	Normals   []float32 // 3 floats per vertex.
}

// VertexCount returns the number of vertices in the band mesh.
func (bm *BandMesh) VertexCount() int { return len(bm.Positions) / 3 }

// Mesh wraps the band geometry in an [isomesh.Mesh] with color and normal
// attributes, ready for normal smoothing or rasterization.
func (bm *BandMesh) Mesh() (*isomesh.Mesh, error) {
	m, err := isomesh.NewMesh(bm.Positions, bm.Indices)
	if err != nil {
		return nil, err
	}
	colors, err := isomesh.NewFloat32Attr(bm.Colors, 3)
	if err != nil {
		return nil, err
	}
	if err := m.SetAttr(isomesh.AttrColor, colors); err != nil {
		return nil, err
	}
	normals, err := isomesh.NewFloat32Attr(bm.Normals, 3)
	if err != nil {
		return nil, err
	}
	if err := m.SetAttr(isomesh.AttrNormal, normals); err != nil {
		return nil, err
	}
	return m, nil
}

// BandGenerator partitions a mesh into colored bands between consecutive
// iso-values, re-triangulating every triangle the iso-values cross.
//
// Min and Max bound the visible scalar range: polygons whose lower bounding
// value falls outside it are dropped, and the range maps scalars into
// normalized color space. Leaving both zero selects the observed range.
//
// Workers > 1 shards the triangle list across that many goroutines. Each
// triangle classifies independently; shard outputs concatenate in shard
// order with re-offset indices, so results are identical to a serial run.
type BandGenerator struct {
	Min, Max float32
	Workers  int
}

// Generate classifies every triangle of m against the ascending iso-value
// list and emits the filled band geometry. The iso-value argument order is
// not significant, an ascending copy is taken. If m lacks a normal
// attribute, smooth vertex normals are derived and stored on it first.
func (bg *BandGenerator) Generate(m *isomesh.Mesh, scalarName string, isoValues []float32, lut *colormap.LookupTable) (*BandMesh, error) {
	scalars, err := meshScalars(m, scalarName)
	if err != nil {
		return nil, err
	}
	if lut == nil {
		return nil, errNilLookupTable
	}
	if m.Attr(isomesh.AttrNormal) == nil {
		if err := isomesh.ComputeNormals(m); err != nil {
			return nil, err
		}
	}
	nattr := m.Attr(isomesh.AttrNormal)
	if nattr.Kind() != isomesh.KindFloat32 || nattr.ItemSize() != 3 {
		return nil, fmt.Errorf("%w: normal attribute must be float32 itemsize 3", isomesh.ErrAttributeSizeMismatch)
	}
	iso := append([]float32(nil), isoValues...)
	slices.Sort(iso)
	smin, smax := resolveRange(bg.Min, bg.Max, scalars)

	nt := m.TriangleCount()
	workers := bg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > nt {
		workers = nt
	}
	shards := make([]bandWorker, workers)
	chunk := (nt + workers - 1) / workers
	var wg sync.WaitGroup
	for i := range shards {
		w := &shards[i]
		*w = bandWorker{
			m:       m,
			scalars: scalars,
			normals: nattr.Float32(),
			iso:     iso,
			smin:    smin,
			smax:    smax,
			lut:     lut,
		}
		lo := i * chunk
		hi := min(lo+chunk, nt)
		if workers == 1 {
			w.run(lo, hi)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(lo, hi)
		}()
	}
	wg.Wait()

	out := &shards[0].out
	for i := 1; i < len(shards); i++ {
		s := &shards[i].out
		offset := uint32(out.VertexCount())
		out.Positions = append(out.Positions, s.Positions...)
		out.Colors = append(out.Colors, s.Colors...)
		out.Normals = append(out.Normals, s.Normals...)
		for _, idx := range s.Indices {
			out.Indices = append(out.Indices, idx+offset)
		}
	}
	isomesh.Logger().Debug("contour.BandGenerator",
		"triangles", nt, "isovalues", len(iso), "workers", workers,
		"outVertices", out.VertexCount(), "outTriangles", len(out.Indices)/3)
	return out, nil
}

// segment is one iso-value crossing within a triangle: two interpolated
// endpoints and the value that generated them. Endpoint a lies on edge
// (1,2) below the middle vertex or (2,3) above it; endpoint b always lies
// on the long edge (1,3). Produced and consumed within a single triangle
// visit.
type segment struct {
	a, b  vertex
	iso   float32
	upper bool
}

type bandWorker struct {
	m       *isomesh.Mesh
	scalars []float32
	normals []float32
	iso     []float32
	smin    float32
	smax    float32
	lut     *colormap.LookupTable

	out     BandMesh
	segs    []segment
	polybuf [5]vertex
}

func (w *bandWorker) run(lo, hi int) {
	for t := lo; t < hi; t++ {
		w.triangle(t)
	}
}

func (w *bandWorker) vertexAt(vi uint32) vertex {
	return vertex{
		p: w.m.Position(int(vi)),
		s: w.scalars[vi],
		n: ms3Vec(w.normals, int(vi)),
	}
}

func (w *bandWorker) triangle(t int) {
	tri := w.m.Triangle(t)
	v := [3]vertex{w.vertexAt(tri[0]), w.vertexAt(tri[1]), w.vertexAt(tri[2])}
	if math32.IsNaN(v[0].s) || math32.IsNaN(v[1].s) || math32.IsNaN(v[2].s) {
		// Unclassifiable triangle: emit whole, colored as NaN.
		w.emit(math32.NaN(), false, append(w.polybuf[:0], v[0], v[1], v[2]))
		return
	}
	// Sort tuples ascending by scalar. Swap parity records whether the
	// sort reversed the triangle's natural winding.
	reversed := false
	if v[0].s > v[1].s {
		v[0], v[1] = v[1], v[0]
		reversed = !reversed
	}
	if v[1].s > v[2].s {
		v[1], v[2] = v[2], v[1]
		reversed = !reversed
	}
	if v[0].s > v[1].s {
		v[0], v[1] = v[1], v[0]
		reversed = !reversed
	}

	// notIntersected colors the sub-region below the first iso-value
	// crossing this triangle; iso-values at or below the lowest vertex
	// raise it to the lower bound of the band containing that vertex.
	notIntersected := w.smin
	w.segs = w.segs[:0]
	for _, iso := range w.iso {
		if iso >= v[2].s {
			break // Ascending list: later values cannot intersect either.
		}
		if iso <= v[0].s {
			notIntersected = iso
			continue
		}
		sg := segment{iso: iso, upper: iso >= v[1].s}
		if sg.upper {
			sg.a, _ = lerpVert(v[1], v[2], iso)
		} else {
			sg.a, _ = lerpVert(v[0], v[1], iso)
		}
		sg.b, _ = lerpVert(v[0], v[2], iso)
		w.segs = append(w.segs, sg)
	}

	if len(w.segs) == 0 {
		// Whole triangle lies within a single band. Skip triangles whose
		// scalar range sits entirely outside the visible range.
		if v[2].s >= w.smin && v[0].s <= w.smax {
			w.emit(notIntersected, reversed, append(w.polybuf[:0], v[0], v[1], v[2]))
		}
		return
	}
	// Region below the first segment, holding the lowest vertex. Dropped
	// when it tops out below the visible range.
	first := w.segs[0]
	if first.iso >= w.smin {
		if first.upper {
			w.emit(notIntersected, reversed, append(w.polybuf[:0], v[0], v[1], first.a, first.b))
		} else {
			w.emit(notIntersected, reversed, append(w.polybuf[:0], v[0], first.a, first.b))
		}
	}
	// Bridging regions between consecutive segments. The single scan
	// transition past the middle vertex emits a pentagon.
	for i := 1; i < len(w.segs); i++ {
		prev, cur := w.segs[i-1], w.segs[i]
		if prev.upper == cur.upper {
			w.emit(prev.iso, reversed, append(w.polybuf[:0], prev.a, cur.a, cur.b, prev.b))
		} else {
			w.emit(prev.iso, reversed, append(w.polybuf[:0], prev.a, v[1], cur.a, cur.b, prev.b))
		}
	}
	// Closing region holding the highest vertex.
	last := w.segs[len(w.segs)-1]
	if last.upper {
		w.emit(last.iso, reversed, append(w.polybuf[:0], last.a, v[2], last.b))
	} else {
		w.emit(last.iso, reversed, append(w.polybuf[:0], last.a, v[1], v[2], last.b))
	}
}

// emit fan-triangulates the convex polygon from its first vertex and
// appends it to the output buffers, colored at the polygon's lower bounding
// scalar value. Polygons bounded outside the visible [Min,Max] range are
// dropped. Every vertex is appended fresh: no index sharing across
// polygons, adjacent bands disagree on color along the shared seam.
func (w *bandWorker) emit(value float32, reversed bool, poly []vertex) {
	if value < w.smin || value > w.smax {
		return
	}
	if reversed {
		slices.Reverse(poly)
	}
	c := w.lut.Sample(normalizeScalar(value, w.smin, w.smax))
	base := uint32(w.out.VertexCount())
	for _, v := range poly {
		w.out.Positions = append(w.out.Positions, v.p.X, v.p.Y, v.p.Z)
		w.out.Colors = append(w.out.Colors, c.X, c.Y, c.Z)
		w.out.Normals = append(w.out.Normals, v.n.X, v.n.Y, v.n.Z)
	}
	for i := uint32(1); i+1 < uint32(len(poly)); i++ {
		w.out.Indices = append(w.out.Indices, base, base+i, base+i+1)
	}
}
