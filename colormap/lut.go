package colormap

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// DefaultLookupTableSize is the table size selected by [NewLookupTable]
// when n is non-positive.
const DefaultLookupTableSize = 256

// LookupTable is a fixed-size uniformly sampled discretization of a preset
// over [0,1]. Immutable once built; sampling is a constant-time nearest
// entry pick, the cheap path for coloring many vertices against one preset.
type LookupTable struct {
	rgb []ms3.Vec
}

// NewLookupTable normalizes the preset and samples its color at n evenly
// spaced values from 0 to 1 inclusive. n <= 0 selects
// [DefaultLookupTableSize].
func NewLookupTable(p Preset, n int) (*LookupTable, error) {
	if n <= 0 {
		n = DefaultLookupTableSize
	} else if n < 2 {
		return nil, errors.New("lookup table needs at least 2 entries")
	}
	p, err := p.Normalize()
	if err != nil {
		return nil, err
	}
	rgb := make([]ms3.Vec, n)
	div := 1 / float32(n-1)
	for i := range rgb {
		rgb[i], err = p.Color(float32(i) * div)
		if err != nil {
			return nil, fmt.Errorf("sampling preset %q: %w", p.Name, err)
		}
	}
	return &LookupTable{rgb: rgb}, nil
}

// Len returns the number of table entries.
func (t *LookupTable) Len() int { return len(t.rgb) }

// At returns table entry i.
func (t *LookupTable) At(i int) ms3.Vec { return t.rgb[i] }

// Sample returns the nearest table entry to the normalized value v by
// rounding v*(Len-1), clamped to table bounds. NaN maps to [Gray].
func (t *LookupTable) Sample(v float32) ms3.Vec {
	if math32.IsNaN(v) {
		return Gray
	}
	i := int(math32.Round(v * float32(len(t.rgb)-1)))
	if i < 0 {
		i = 0
	} else if i >= len(t.rgb) {
		i = len(t.rgb) - 1
	}
	return t.rgb[i]
}
