// Package colormap interprets piecewise-linear color map presets and builds
// discretized lookup tables for coloring scalar contours.
package colormap

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms1"
	"github.com/soypat/geometry/ms3"
)

var (
	ErrInvalidPreset   = errors.New("invalid colormap preset")
	ErrValueOutOfRange = errors.New("value outside [0,1] range")
)

// Gray is the fallback color for NaN scalars when a preset configures no
// NaN color of its own.
var Gray = ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5}

// Space selects the interpolation space between control points.
type Space uint8

const (
	// SpaceRGB interpolates color components linearly. The default.
	SpaceRGB Space = iota
	// SpaceHSV interpolates in hue/saturation/value space, taking the
	// short way around the hue circle.
	SpaceHSV
)

// Preset is an ordered list of scalar/RGB control points defining a
// piecewise-linear color map. RGBPoints flattens control points as
// (value, r, g, b) quadruples with non-decreasing values and color
// components in [0,1].
type Preset struct {
	Name string
	// RGBPoints holds (value,r,g,b) quadruples, at least two.
	RGBPoints []float32
	// NanColor is the optional color assigned to NaN scalars.
	NanColor []float32
	// Space is the interpolation space used between control points.
	Space Space
}

// Validate checks the control point invariants: quadruple flattening, at
// least two control points and non-decreasing scalar values.
func (p Preset) Validate() error {
	if len(p.RGBPoints)%4 != 0 {
		return fmt.Errorf("%w %q: RGBPoints length %d not multiple of 4", ErrInvalidPreset, p.Name, len(p.RGBPoints))
	} else if len(p.RGBPoints) < 8 {
		return fmt.Errorf("%w %q: need at least 2 control points, got %d", ErrInvalidPreset, p.Name, len(p.RGBPoints)/4)
	}
	for i := 4; i < len(p.RGBPoints); i += 4 {
		if p.RGBPoints[i] < p.RGBPoints[i-4] {
			return fmt.Errorf("%w %q: control point values decrease at quadruple %d", ErrInvalidPreset, p.Name, i/4)
		}
	}
	if p.NanColor != nil && len(p.NanColor) != 3 {
		return fmt.Errorf("%w %q: NanColor must have 3 components, got %d", ErrInvalidPreset, p.Name, len(p.NanColor))
	}
	return nil
}

// NumPoints returns the number of control points.
func (p Preset) NumPoints() int { return len(p.RGBPoints) / 4 }

func (p Preset) point(i int) (v float32, c ms3.Vec) {
	j := 4 * i
	return p.RGBPoints[j], ms3.Vec{X: p.RGBPoints[j+1], Y: p.RGBPoints[j+2], Z: p.RGBPoints[j+3]}
}

func (p Preset) nanColor() ms3.Vec {
	if p.NanColor == nil {
		return Gray
	}
	return ms3.Vec{X: p.NanColor[0], Y: p.NanColor[1], Z: p.NanColor[2]}
}

// Normalize rescales all control point values into [0,1] using the preset's
// observed min/max and returns the rescaled preset. Presets already spanning
// exactly [0,1] and degenerate single-value presets are returned unchanged,
// making Normalize idempotent. The receiver's RGBPoints are never modified.
func (p Preset) Normalize() (Preset, error) {
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	vmin, _ := p.point(0)
	vmax, _ := p.point(p.NumPoints() - 1)
	if vmin == vmax || (vmin == 0 && vmax == 1) {
		return p, nil
	}
	scale := 1 / (vmax - vmin)
	pts := make([]float32, len(p.RGBPoints))
	copy(pts, p.RGBPoints)
	for i := 0; i < len(pts); i += 4 {
		pts[i] = (pts[i] - vmin) * scale
	}
	p.RGBPoints = pts
	return p, nil
}

// Color maps a normalized value in [0,1] to an RGB color by locating the
// bracketing pair of control points with a linear scan and interpolating.
// Values outside the control point span clamp to the first/last color.
// NaN returns the preset's NaN color, or [Gray] when none is configured.
func (p Preset) Color(v float32) (ms3.Vec, error) {
	if err := p.Validate(); err != nil {
		return ms3.Vec{}, err
	}
	if math32.IsNaN(v) {
		return p.nanColor(), nil
	}
	if v < 0 || v > 1 {
		return ms3.Vec{}, fmt.Errorf("%w: %g", ErrValueOutOfRange, v)
	}
	n := p.NumPoints()
	v0, c0 := p.point(0)
	if v <= v0 {
		return c0, nil
	}
	// Control points number tens at most, linear scan beats bookkeeping.
	for i := 1; i < n; i++ {
		v1, c1 := p.point(i)
		if v <= v1 {
			if v1 == v0 {
				return c1, nil
			}
			t := (v - v0) / (v1 - v0)
			return p.blend(c0, c1, t), nil
		}
		v0, c0 = v1, c1
	}
	return c0, nil
}

func (p Preset) blend(c0, c1 ms3.Vec, t float32) ms3.Vec {
	if p.Space == SpaceHSV {
		return blendHSV(c0, c1, t)
	}
	return ms3.Vec{
		X: ms1.Interp(c0.X, c1.X, t),
		Y: ms1.Interp(c0.Y, c1.Y, t),
		Z: ms1.Interp(c0.Z, c1.Z, t),
	}
}
