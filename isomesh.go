// Package isomesh provides containers and algorithms for scalar field
// contouring over triangulated surface meshes. The root package holds the
// mesh buffer and normal computation; see the colormap and contour
// subpackages for color lookup tables and iso-line/iso-band generation.
package isomesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Errors surfaced by mesh and attribute validation. Violations of these
// indicate a caller bug and are fatal to the current call.
var (
	ErrMissingGeometry       = errors.New("mesh missing positions or indices")
	ErrIndexOutOfRange       = errors.New("index out of range")
	ErrAttributeSizeMismatch = errors.New("attribute size mismatch")
)

// Conventional attribute names used across subpackages.
const (
	// AttrNormal stores derived vertex normals, float32 itemsize 3.
	AttrNormal = "normal"
	// AttrColor stores per-vertex RGB colors, float32 itemsize 3.
	AttrColor = "color"
)

// ElemKind discriminates the element type backing an [Attribute].
type ElemKind uint8

const (
	KindFloat32 ElemKind = iota
	KindUint32
	KindUint16
)

func (k ElemKind) String() string {
	switch k {
	case KindFloat32:
		return "float32"
	case KindUint32:
		return "uint32"
	case KindUint16:
		return "uint16"
	}
	return "unknown"
}

// Attribute is a fixed item size per-vertex array. Only one of the backing
// slices is non-nil, selected by kind.
type Attribute struct {
	kind     ElemKind
	itemSize int
	f32      []float32
	u32      []uint32
	u16      []uint16
}

// NewFloat32Attr creates a float32 element attribute. itemSize is the number
// of components per vertex, i.e. 3 for positions and normals, 1 for scalars.
func NewFloat32Attr(data []float32, itemSize int) (*Attribute, error) {
	if err := checkAttrSizing(len(data), itemSize); err != nil {
		return nil, err
	}
	return &Attribute{kind: KindFloat32, itemSize: itemSize, f32: data}, nil
}

// NewUint32Attr creates a uint32 element attribute.
func NewUint32Attr(data []uint32, itemSize int) (*Attribute, error) {
	if err := checkAttrSizing(len(data), itemSize); err != nil {
		return nil, err
	}
	return &Attribute{kind: KindUint32, itemSize: itemSize, u32: data}, nil
}

// NewUint16Attr creates a uint16 element attribute.
func NewUint16Attr(data []uint16, itemSize int) (*Attribute, error) {
	if err := checkAttrSizing(len(data), itemSize); err != nil {
		return nil, err
	}
	return &Attribute{kind: KindUint16, itemSize: itemSize, u16: data}, nil
}

func checkAttrSizing(length, itemSize int) error {
	if itemSize <= 0 {
		return fmt.Errorf("%w: non-positive item size %d", ErrAttributeSizeMismatch, itemSize)
	} else if length%itemSize != 0 {
		return fmt.Errorf("%w: data length %d not multiple of item size %d", ErrAttributeSizeMismatch, length, itemSize)
	}
	return nil
}

// Kind returns the element type of the attribute.
func (a *Attribute) Kind() ElemKind { return a.kind }

// ItemSize returns the number of components per vertex.
func (a *Attribute) ItemSize() int { return a.itemSize }

// Count returns the number of items (vertices) described by the attribute.
func (a *Attribute) Count() int { return a.len() / a.itemSize }

func (a *Attribute) len() int {
	switch a.kind {
	case KindFloat32:
		return len(a.f32)
	case KindUint32:
		return len(a.u32)
	case KindUint16:
		return len(a.u16)
	}
	return 0
}

// Float32 returns the backing float32 slice, or nil if the attribute
// is integer backed.
func (a *Attribute) Float32() []float32 { return a.f32 }

// Uint32 returns the backing uint32 slice, or nil if not uint32 backed.
func (a *Attribute) Uint32() []uint32 { return a.u32 }

// Uint16 returns the backing uint16 slice, or nil if not uint16 backed.
func (a *Attribute) Uint16() []uint16 { return a.u16 }

// At returns component comp of item i widened to float32 regardless of the
// backing element type.
func (a *Attribute) At(i, comp int) (float32, error) {
	if i < 0 || i >= a.Count() || comp < 0 || comp >= a.itemSize {
		return 0, fmt.Errorf("%w: item %d component %d of %d items itemsize %d", ErrIndexOutOfRange, i, comp, a.Count(), a.itemSize)
	}
	j := i*a.itemSize + comp
	switch a.kind {
	case KindFloat32:
		return a.f32[j], nil
	case KindUint32:
		return float32(a.u32[j]), nil
	default:
		return float32(a.u16[j]), nil
	}
}

// Mesh is a flat-buffer triangle mesh: vertex positions, an optional
// triangle index list and named per-vertex attributes. A nil index list
// means vertices are implicitly grouped in triangles of 3 in storage order.
type Mesh struct {
	positions []float32
	indices   []uint32
	attrs     map[string]*Attribute
}

// NewMesh validates and wraps position and index buffers into a Mesh.
// indices may be nil for non-indexed geometry.
func NewMesh(positions []float32, indices []uint32) (*Mesh, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: empty positions", ErrMissingGeometry)
	} else if len(positions)%3 != 0 {
		return nil, fmt.Errorf("%w: position length %d not multiple of 3", ErrAttributeSizeMismatch, len(positions))
	}
	nv := uint32(len(positions) / 3)
	if indices != nil {
		if len(indices)%3 != 0 {
			return nil, fmt.Errorf("%w: index length %d not multiple of 3", ErrAttributeSizeMismatch, len(indices))
		}
		for i, idx := range indices {
			if idx >= nv {
				return nil, fmt.Errorf("%w: index %d at position %d exceeds vertex count %d", ErrIndexOutOfRange, idx, i, nv)
			}
		}
	} else if len(positions)%9 != 0 {
		return nil, fmt.Errorf("%w: non-indexed position length %d not multiple of 9", ErrAttributeSizeMismatch, len(positions))
	}
	return &Mesh{positions: positions, indices: indices}, nil
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.positions) / 3 }

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	if m.indices != nil {
		return len(m.indices) / 3
	}
	return len(m.positions) / 9
}

// Positions returns the flat position buffer (3 floats per vertex).
func (m *Mesh) Positions() []float32 { return m.positions }

// Indices returns the flat triangle index buffer, nil for implicit grouping.
func (m *Mesh) Indices() []uint32 { return m.indices }

// Position returns the position of vertex v.
func (m *Mesh) Position(v int) ms3.Vec {
	return ms3.Vec{X: m.positions[3*v], Y: m.positions[3*v+1], Z: m.positions[3*v+2]}
}

// Triangle returns the vertex indices of triangle t.
func (m *Mesh) Triangle(t int) [3]uint32 {
	if m.indices != nil {
		return [3]uint32{m.indices[3*t], m.indices[3*t+1], m.indices[3*t+2]}
	}
	u := uint32(3 * t)
	return [3]uint32{u, u + 1, u + 2}
}

// SetAttr adds or replaces a named per-vertex attribute. The attribute item
// count must match the mesh vertex count.
func (m *Mesh) SetAttr(name string, a *Attribute) error {
	if a.Count() != m.VertexCount() {
		return fmt.Errorf("%w: attribute %q has %d items, mesh has %d vertices", ErrAttributeSizeMismatch, name, a.Count(), m.VertexCount())
	}
	if m.attrs == nil {
		m.attrs = make(map[string]*Attribute)
	}
	m.attrs[name] = a
	return nil
}

// Attr returns the named attribute, or nil when absent.
func (m *Mesh) Attr(name string) *Attribute {
	return m.attrs[name]
}

// Scalars returns the float32 data of the named single-component attribute.
// It is the accessor used by the contouring algorithms to fetch the scalar
// field being contoured.
func (m *Mesh) Scalars(name string) ([]float32, error) {
	a := m.attrs[name]
	if a == nil {
		return nil, fmt.Errorf("%w: no attribute %q", ErrMissingGeometry, name)
	} else if a.kind != KindFloat32 || a.itemSize != 1 {
		return nil, fmt.Errorf("%w: attribute %q is %s itemsize %d, want float32 itemsize 1", ErrAttributeSizeMismatch, name, a.kind, a.itemSize)
	}
	return a.f32, nil
}

// ScalarRange scans the scalar array once and returns its minimum and
// maximum, skipping NaN entries. A fully-NaN or empty array returns (0, 0):
// a zero range is a legitimate data state handled downstream, not an error.
func ScalarRange(scalars []float32) (smin, smax float32) {
	smin = math32.Inf(1)
	smax = math32.Inf(-1)
	for _, s := range scalars {
		if math32.IsNaN(s) {
			continue
		}
		smin = math32.Min(smin, s)
		smax = math32.Max(smax, s)
	}
	if smin > smax {
		return 0, 0
	}
	return smin, smax
}
