package isomesh

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

const (
	// DefaultWeldEpsilon is the quantization step used to consider two
	// vertex positions spatially coincident during normal welding.
	DefaultWeldEpsilon = 1e-6
	// epstol checks for badly conditioned denominators such as lengths
	// used for normalization.
	epstol = 6e-7
)

// defaultNormal substitutes zero-length normals arising from degenerate
// geometry. Not an error condition, flat or collapsed triangles are
// legitimate data.
var defaultNormal = ms3.Vec{Z: 1}

// FaceNormal returns the unit normal of the triangle (a,b,c) following the
// right hand rule. Degenerate triangles yield the +Z up-vector.
func FaceNormal(a, b, c ms3.Vec) ms3.Vec {
	n := ms3.Cross(ms3.Sub(b, a), ms3.Sub(c, a))
	return normalizeOrDefault(n)
}

func normalizeOrDefault(n ms3.Vec) ms3.Vec {
	len2 := ms3.Norm(n)
	if len2 < epstol || math32.IsNaN(len2) {
		return defaultNormal
	}
	return ms3.Scale(1/len2, n)
}

// ComputeNormals derives smooth per-vertex normals from face normals of all
// incident triangles and stores them on m under [AttrNormal], replacing any
// existing normal attribute. Each vertex normal is the incidence-count
// average of its face normals, renormalized.
func ComputeNormals(m *Mesh) error {
	nv := m.VertexCount()
	nt := m.TriangleCount()
	if nt == 0 {
		return fmt.Errorf("%w: mesh has no triangles", ErrMissingGeometry)
	}
	sums := make([]ms3.Vec, nv)
	counts := make([]int32, nv)
	for t := 0; t < nt; t++ {
		tri := m.Triangle(t)
		fn := FaceNormal(m.Position(int(tri[0])), m.Position(int(tri[1])), m.Position(int(tri[2])))
		for _, vi := range tri {
			sums[vi] = ms3.Add(sums[vi], fn)
			counts[vi]++
		}
	}
	normals := make([]float32, 3*nv)
	for v := 0; v < nv; v++ {
		n := defaultNormal
		if counts[v] > 0 {
			n = normalizeOrDefault(ms3.Scale(1/float32(counts[v]), sums[v]))
		}
		normals[3*v] = n.X
		normals[3*v+1] = n.Y
		normals[3*v+2] = n.Z
	}
	attr, err := NewFloat32Attr(normals, 3)
	if err != nil {
		return err
	}
	return m.SetAttr(AttrNormal, attr)
}

// weldKey is a quantized vertex position. Integer tuple keys avoid the
// locale and formatting pitfalls of stringified coordinates.
type weldKey struct {
	x, y, z int64
}

func makeWeldKey(p ms3.Vec, invEps float32) weldKey {
	return weldKey{
		x: int64(math32.Round(p.X * invEps)),
		y: int64(math32.Round(p.Y * invEps)),
		z: int64(math32.Round(p.Z * invEps)),
	}
}

// WeldNormals unifies the normals of spatially coincident vertices: vertices
// whose positions quantize to the same bucket at the given epsilon have
// their normals replaced by the bucket's renormalized average. Vertices
// remain distinct index entries, only normals change. This removes shading
// seams on meshes that duplicate vertices along color boundaries.
//
// epsilon <= 0 selects [DefaultWeldEpsilon]. The number of vertices whose
// normal was unified with at least one other vertex is returned.
func WeldNormals(m *Mesh, epsilon float32) (welded int, err error) {
	attr := m.Attr(AttrNormal)
	if attr == nil {
		return 0, fmt.Errorf("%w: mesh has no %q attribute", ErrMissingGeometry, AttrNormal)
	} else if attr.Kind() != KindFloat32 || attr.ItemSize() != 3 {
		return 0, fmt.Errorf("%w: %q attribute must be float32 itemsize 3", ErrAttributeSizeMismatch, AttrNormal)
	}
	if epsilon <= 0 {
		epsilon = DefaultWeldEpsilon
	}
	normals := attr.Float32()
	nv := m.VertexCount()
	invEps := 1 / epsilon
	buckets := make(map[weldKey][]int32, nv)
	for v := 0; v < nv; v++ {
		k := makeWeldKey(m.Position(v), invEps)
		buckets[k] = append(buckets[k], int32(v))
	}
	for _, verts := range buckets {
		if len(verts) < 2 {
			continue
		}
		var sum ms3.Vec
		for _, v := range verts {
			sum = ms3.Add(sum, ms3.Vec{X: normals[3*v], Y: normals[3*v+1], Z: normals[3*v+2]})
		}
		n := normalizeOrDefault(ms3.Scale(1/float32(len(verts)), sum))
		for _, v := range verts {
			normals[3*v] = n.X
			normals[3*v+1] = n.Y
			normals[3*v+2] = n.Z
		}
		welded += len(verts)
	}
	Logger().Debug("isomesh.WeldNormals",
		"vertices", nv, "buckets", len(buckets), "welded", welded, "epsilon", epsilon)
	return welded, nil
}

// SmoothNormals computes per-vertex normals and welds coincident vertices in
// one pass. It is the usual post-processing step for band meshes, which
// duplicate vertices along every band seam.
func SmoothNormals(m *Mesh, epsilon float32) error {
	err := ComputeNormals(m)
	if err != nil {
		return err
	}
	_, err = WeldNormals(m, epsilon)
	return err
}
