// Package isoaux provides auxiliary functions to aid users in getting set
// up with isomesh quickly: one-call contouring pipelines, image rendering
// of contour output and STL export. Ideally users wire the core packages
// themselves since applications vary widely.
package isoaux

import (
	"errors"
	"fmt"
	"io"

	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/colormap"
	"github.com/soypat/isomesh/contour"
)

// Config drives the [Bands] and [Lines] pipelines.
type Config struct {
	// ScalarName selects the mesh attribute holding the contoured field.
	ScalarName string
	// Preset is the color map. Zero value selects [colormap.CoolToWarm].
	Preset colormap.Preset
	// IsoValues are the contoured thresholds. When nil, NumBands evenly
	// spaced interior values over the scalar range are used.
	IsoValues []float32
	// NumBands is the number of bands when IsoValues is nil.
	NumBands int
	// Min and Max bound the visible scalar range; both zero selects the
	// observed range.
	Min, Max float32
	// TableSize overrides the lookup table size. Zero selects the default.
	TableSize int
	// SmoothNormals welds coincident band seam vertices for seamless
	// shading after band generation.
	SmoothNormals bool
	// WeldEpsilon is the coincidence quantization step for smoothing.
	// Zero selects [isomesh.DefaultWeldEpsilon].
	WeldEpsilon float32
	// Workers shards band classification across goroutines when > 1.
	Workers int

	// PNGOutput, when non-nil, receives a rasterized orthographic view
	// of the generated geometry.
	PNGOutput io.Writer
	// STLOutput, when non-nil, receives the band mesh as binary STL.
	STLOutput io.Writer
	// ImageWidth and ImageHeight size the PNG render. Zero selects 512.
	ImageWidth, ImageHeight int
	// Supersample renders at a multiple of the output size and scales
	// down for antialiasing. Zero or one disables.
	Supersample int
}

func (cfg *Config) lookupTable(scalars []float32) (*colormap.LookupTable, []float32, error) {
	preset := cfg.Preset
	if preset.RGBPoints == nil {
		preset = colormap.CoolToWarm()
	}
	lut, err := colormap.NewLookupTable(preset, cfg.TableSize)
	if err != nil {
		return nil, nil, err
	}
	iso := cfg.IsoValues
	if iso == nil {
		if cfg.NumBands < 1 {
			return nil, nil, errors.New("config requires IsoValues or positive NumBands")
		}
		smin, smax := cfg.Min, cfg.Max
		if smin == 0 && smax == 0 {
			smin, smax = isomesh.ScalarRange(scalars)
		}
		step := (smax - smin) / float32(cfg.NumBands)
		for i := 1; i < cfg.NumBands; i++ {
			iso = append(iso, smin+float32(i)*step)
		}
	}
	return lut, iso, nil
}

// Bands runs the full filled-contour pipeline: lookup table construction,
// band generation and optional normal smoothing, then writes any outputs
// configured in cfg. The generated band mesh is returned in all cases.
func Bands(m *isomesh.Mesh, cfg Config) (*contour.BandMesh, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", isomesh.ErrMissingGeometry)
	}
	scalars, err := m.Scalars(cfg.ScalarName)
	if err != nil {
		return nil, err
	}
	lut, iso, err := cfg.lookupTable(scalars)
	if err != nil {
		return nil, err
	}
	bg := contour.BandGenerator{Min: cfg.Min, Max: cfg.Max, Workers: cfg.Workers}
	bm, err := bg.Generate(m, cfg.ScalarName, iso, lut)
	if err != nil {
		return nil, err
	}
	if cfg.SmoothNormals {
		bandMesh, err := bm.Mesh()
		if err != nil {
			return nil, err
		}
		// Mesh shares the band buffers so welded normals land in bm.
		if err := isomesh.SmoothNormals(bandMesh, cfg.WeldEpsilon); err != nil {
			return nil, err
		}
		nrm := bandMesh.Attr(isomesh.AttrNormal).Float32()
		copy(bm.Normals, nrm)
	}
	if cfg.PNGOutput != nil {
		err = EncodeBandsPNG(cfg.PNGOutput, bm, cfg.ImageWidth, cfg.ImageHeight, cfg.Supersample)
		if err != nil {
			return nil, fmt.Errorf("writing band PNG: %w", err)
		}
	}
	if cfg.STLOutput != nil {
		_, err = WriteBinarySTL(cfg.STLOutput, bm)
		if err != nil {
			return nil, fmt.Errorf("writing band STL: %w", err)
		}
	}
	return bm, nil
}

// Lines runs the iso-line pipeline and writes the PNG output when
// configured. STL output does not apply to line geometry.
func Lines(m *isomesh.Mesh, cfg Config) (*contour.LineSet, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", isomesh.ErrMissingGeometry)
	}
	scalars, err := m.Scalars(cfg.ScalarName)
	if err != nil {
		return nil, err
	}
	lut, iso, err := cfg.lookupTable(scalars)
	if err != nil {
		return nil, err
	}
	le := contour.LineExtractor{Min: cfg.Min, Max: cfg.Max}
	ls, err := le.Extract(m, cfg.ScalarName, iso, lut)
	if err != nil {
		return nil, err
	}
	if cfg.PNGOutput != nil {
		err = EncodeLinesPNG(cfg.PNGOutput, ls, cfg.ImageWidth, cfg.ImageHeight, cfg.Supersample)
		if err != nil {
			return nil, fmt.Errorf("writing line PNG: %w", err)
		}
	}
	return ls, nil
}
