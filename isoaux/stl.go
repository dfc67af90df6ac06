package isoaux

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/contour"
)

// stlTriangle is the 50 byte binary STL facet record.
type stlTriangle struct {
	Normal   [3]float32
	Vertices [3][3]float32
	Attr     uint16
}

// WriteBinarySTL writes the band mesh as binary STL, one facet per output
// triangle with a recomputed face normal. STL carries no color, so band
// colors are dropped; the format is supported here for inspecting band
// re-triangulation in external mesh viewers. Returns bytes written.
func WriteBinarySTL(w io.Writer, bm *contour.BandMesh) (int, error) {
	if len(bm.Indices)%3 != 0 {
		return 0, errors.New("band mesh index count not multiple of 3")
	}
	nt := len(bm.Indices) / 3
	if nt == 0 {
		return 0, errors.New("empty band mesh")
	}
	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], "isomesh binary STL")
	n, err := bw.Write(header[:])
	if err != nil {
		return n, err
	}
	err = binary.Write(bw, binary.LittleEndian, uint32(nt))
	if err != nil {
		return n, err
	}
	n += 4
	var facet stlTriangle
	for t := 0; t < nt; t++ {
		var p [3]ms3.Vec
		for k := 0; k < 3; k++ {
			i := bm.Indices[3*t+k]
			p[k] = ms3.Vec{X: bm.Positions[3*i], Y: bm.Positions[3*i+1], Z: bm.Positions[3*i+2]}
			facet.Vertices[k] = [3]float32{p[k].X, p[k].Y, p[k].Z}
		}
		fn := isomesh.FaceNormal(p[0], p[1], p[2])
		facet.Normal = [3]float32{fn.X, fn.Y, fn.Z}
		err = binary.Write(bw, binary.LittleEndian, facet)
		if err != nil {
			return n, err
		}
		n += 50
	}
	return n, bw.Flush()
}
