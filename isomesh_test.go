package isomesh_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/isomesh"
)

const tol = 1e-6

func TestNewMeshValidation(t *testing.T) {
	_, err := isomesh.NewMesh(nil, nil)
	if !errors.Is(err, isomesh.ErrMissingGeometry) {
		t.Errorf("empty positions: got %v, want ErrMissingGeometry", err)
	}
	_, err = isomesh.NewMesh([]float32{0, 0}, nil)
	if !errors.Is(err, isomesh.ErrAttributeSizeMismatch) {
		t.Errorf("bad position length: got %v, want ErrAttributeSizeMismatch", err)
	}
	_, err = isomesh.NewMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 3})
	if !errors.Is(err, isomesh.ErrIndexOutOfRange) {
		t.Errorf("out of range index: got %v, want ErrIndexOutOfRange", err)
	}
	// Non-indexed meshes must group positions in triples of vertices.
	_, err = isomesh.NewMesh([]float32{0, 0, 0, 1, 0, 0}, nil)
	if !errors.Is(err, isomesh.ErrAttributeSizeMismatch) {
		t.Errorf("non-indexed short positions: got %v, want ErrAttributeSizeMismatch", err)
	}
	m, err := isomesh.NewMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("got %d vertices %d triangles, want 3 and 1", m.VertexCount(), m.TriangleCount())
	}
}

func TestImplicitTriangles(t *testing.T) {
	m, err := isomesh.NewMesh(make([]float32, 18), nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("got %d triangles, want 2", m.TriangleCount())
	}
	if tri := m.Triangle(1); tri != [3]uint32{3, 4, 5} {
		t.Errorf("implicit triangle 1 = %v, want {3 4 5}", tri)
	}
}

func TestAttributes(t *testing.T) {
	m, err := isomesh.NewMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	scalars, err := isomesh.NewFloat32Attr([]float32{1, 2, 3}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetAttr("temperature", scalars); err != nil {
		t.Fatal(err)
	}
	got, err := m.Scalars("temperature")
	if err != nil {
		t.Fatal(err)
	}
	if got[2] != 3 {
		t.Errorf("scalar[2] = %g, want 3", got[2])
	}
	// Item count mismatch with vertex count.
	bad, _ := isomesh.NewFloat32Attr([]float32{1, 2}, 1)
	if err := m.SetAttr("bad", bad); !errors.Is(err, isomesh.ErrAttributeSizeMismatch) {
		t.Errorf("mismatched attribute: got %v, want ErrAttributeSizeMismatch", err)
	}
	// Integer attributes widen through At.
	ids, err := isomesh.NewUint16Attr([]uint16{7, 8, 9}, 1)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ids.At(1, 0)
	if err != nil || v != 8 {
		t.Errorf("At(1,0) = %g, %v, want 8, nil", v, err)
	}
	_, err = ids.At(3, 0)
	if !errors.Is(err, isomesh.ErrIndexOutOfRange) {
		t.Errorf("At out of range: got %v, want ErrIndexOutOfRange", err)
	}
	if _, err := m.Scalars("missing"); !errors.Is(err, isomesh.ErrMissingGeometry) {
		t.Errorf("missing scalar attribute: got %v, want ErrMissingGeometry", err)
	}
}

func TestScalarRange(t *testing.T) {
	nan := float32(math.NaN())
	smin, smax := isomesh.ScalarRange([]float32{2, nan, -1, 4, nan})
	if smin != -1 || smax != 4 {
		t.Errorf("range = (%g,%g), want (-1,4)", smin, smax)
	}
	smin, smax = isomesh.ScalarRange([]float32{nan, nan})
	if smin != 0 || smax != 0 {
		t.Errorf("all-NaN range = (%g,%g), want (0,0)", smin, smax)
	}
}

func TestFaceNormal(t *testing.T) {
	n := isomesh.FaceNormal(ms3.Vec{}, ms3.Vec{X: 1}, ms3.Vec{Y: 1})
	if math32.Abs(n.Z-1) > tol || math32.Abs(n.X) > tol || math32.Abs(n.Y) > tol {
		t.Errorf("unit right triangle normal = %+v, want +Z", n)
	}
	// Degenerate (collinear) triangle falls back to the up-vector.
	n = isomesh.FaceNormal(ms3.Vec{}, ms3.Vec{X: 1}, ms3.Vec{X: 2})
	if n != (ms3.Vec{Z: 1}) {
		t.Errorf("degenerate normal = %+v, want +Z fallback", n)
	}
}

func TestComputeNormalsFlatQuad(t *testing.T) {
	m, err := isomesh.NewMesh([]float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}, []uint32{0, 1, 2, 0, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := isomesh.ComputeNormals(m); err != nil {
		t.Fatal(err)
	}
	normals := m.Attr(isomesh.AttrNormal).Float32()
	for v := 0; v < m.VertexCount(); v++ {
		if math32.Abs(normals[3*v+2]-1) > tol {
			t.Errorf("vertex %d normal Z = %g, want 1", v, normals[3*v+2])
		}
	}
}

func TestWeldNormals(t *testing.T) {
	// Two triangles folded along a shared-position seam with duplicated
	// vertices: a roof shape. Vertices 1,2 coincide with 4,5 exactly.
	m, err := isomesh.NewMesh([]float32{
		0, 0, 0, // 0
		1, 0, 1, // 1
		1, 1, 1, // 2
		1, 0, 1, // 3 duplicate of 1
		1, 1, 1, // 4 duplicate of 2
		2, 0, 0, // 5
	}, []uint32{0, 1, 2, 3, 5, 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := isomesh.ComputeNormals(m); err != nil {
		t.Fatal(err)
	}
	welded, err := isomesh.WeldNormals(m, 0)
	if err != nil {
		t.Fatal(err)
	}
	if welded != 4 {
		t.Errorf("welded %d vertices, want 4", welded)
	}
	normals := m.Attr(isomesh.AttrNormal).Float32()
	for _, pair := range [2][2]int{{1, 3}, {2, 4}} {
		a, b := pair[0], pair[1]
		for c := 0; c < 3; c++ {
			if normals[3*a+c] != normals[3*b+c] {
				t.Errorf("vertices %d and %d normals differ after welding: %v vs %v",
					a, b, normals[3*a:3*a+3], normals[3*b:3*b+3])
			}
		}
	}
	// Distinct positions must keep independent normals.
	if normals[0] == normals[3*5] && normals[2] == normals[3*5+2] {
		t.Error("far-apart vertices 0 and 5 unexpectedly share a normal")
	}
}

func TestWeldNormalsEpsilon(t *testing.T) {
	const eps = 1e-3
	// Vertices 0 and 1 are within eps, vertex 2 is not.
	m, err := isomesh.NewMesh([]float32{
		0, 0, 0,
		1e-4, 0, 0,
		0.5, 0, 0,
		0, 1, 0,
		0.5, 1, 0,
		1, 1, 0,
	}, []uint32{0, 2, 3, 1, 5, 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := isomesh.ComputeNormals(m); err != nil {
		t.Fatal(err)
	}
	welded, err := isomesh.WeldNormals(m, eps)
	if err != nil {
		t.Fatal(err)
	}
	if welded != 2 {
		t.Errorf("welded %d vertices, want 2", welded)
	}
}

func TestWeldRequiresNormals(t *testing.T) {
	m, err := isomesh.NewMesh(make([]float32, 9), []uint32{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := isomesh.WeldNormals(m, 0); !errors.Is(err, isomesh.ErrMissingGeometry) {
		t.Errorf("weld without normals: got %v, want ErrMissingGeometry", err)
	}
}
