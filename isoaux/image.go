package isoaux

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/chewxy/math32"
	"github.com/soypat/isomesh/contour"
	"golang.org/x/image/draw"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

const defaultImageSize = 512

// RasterizeBands draws an orthographic XY projection of the band mesh onto
// img, filling triangles with barycentrically interpolated vertex colors.
// Pixels outside the mesh are left untouched.
func RasterizeBands(bm *contour.BandMesh, img setImage) error {
	if bm.VertexCount() == 0 || len(bm.Indices) == 0 {
		return errors.New("empty band mesh")
	}
	proj := newProjection(bm.Positions, img.Bounds())
	for t := 0; t+2 < len(bm.Indices); t += 3 {
		i0, i1, i2 := bm.Indices[t], bm.Indices[t+1], bm.Indices[t+2]
		x0, y0 := proj.toPixel(bm.Positions[3*i0], bm.Positions[3*i0+1])
		x1, y1 := proj.toPixel(bm.Positions[3*i1], bm.Positions[3*i1+1])
		x2, y2 := proj.toPixel(bm.Positions[3*i2], bm.Positions[3*i2+1])
		fillTriangle(img, x0, y0, x1, y1, x2, y2,
			rgb(bm.Colors, i0), rgb(bm.Colors, i1), rgb(bm.Colors, i2))
	}
	return nil
}

// RasterizeLines draws the iso-line segments onto img with each iso-value's
// assigned color.
func RasterizeLines(ls *contour.LineSet, img setImage) error {
	if ls.SegmentCount() == 0 {
		return errors.New("empty line set")
	}
	proj := newProjection(ls.Positions, img.Bounds())
	seg := 0
	for i, n := range ls.Counts {
		c := color.RGBA{
			R: uint8(ls.Colors[3*i] * 255),
			G: uint8(ls.Colors[3*i+1] * 255),
			B: uint8(ls.Colors[3*i+2] * 255),
			A: 255,
		}
		for j := 0; j < n; j++ {
			p := 6 * (seg + j)
			x0, y0 := proj.toPixel(ls.Positions[p], ls.Positions[p+1])
			x1, y1 := proj.toPixel(ls.Positions[p+3], ls.Positions[p+4])
			drawLine(img, x0, y0, x1, y1, c)
		}
		seg += n
	}
	return nil
}

// EncodeBandsPNG rasterizes the band mesh over a white background and PNG
// encodes it. supersample > 1 renders at that multiple of the target size
// and downscales with Catmull-Rom interpolation for antialiased edges.
func EncodeBandsPNG(w io.Writer, bm *contour.BandMesh, width, height, supersample int) error {
	return encodePNG(w, width, height, supersample, func(img setImage) error {
		return RasterizeBands(bm, img)
	})
}

// EncodeLinesPNG rasterizes the line set over a white background and PNG
// encodes it.
func EncodeLinesPNG(w io.Writer, ls *contour.LineSet, width, height, supersample int) error {
	return encodePNG(w, width, height, supersample, func(img setImage) error {
		return RasterizeLines(ls, img)
	})
}

func encodePNG(w io.Writer, width, height, supersample int, raster func(setImage) error) error {
	if width <= 0 {
		width = defaultImageSize
	}
	if height <= 0 {
		height = defaultImageSize
	}
	if supersample < 1 {
		supersample = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width*supersample, height*supersample))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	if err := raster(img); err != nil {
		return err
	}
	if supersample > 1 {
		down := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(down, down.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = down
	}
	return png.Encode(w, img)
}

// projection maps mesh XY coordinates into pixel space preserving aspect
// ratio, with Y flipped to match image row order.
type projection struct {
	minX, minY float32
	scale      float32
	offX, offY float32
	spanY      float32
}

func newProjection(positions []float32, bounds image.Rectangle) projection {
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	for i := 0; i+2 < len(positions); i += 3 {
		minX = math32.Min(minX, positions[i])
		maxX = math32.Max(maxX, positions[i])
		minY = math32.Min(minY, positions[i+1])
		maxY = math32.Max(maxY, positions[i+1])
	}
	w := float32(bounds.Dx())
	h := float32(bounds.Dy())
	sx, sy := maxX-minX, maxY-minY
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}
	scale := math32.Min(w/sx, h/sy)
	return projection{
		minX: minX, minY: minY, scale: scale,
		offX:  float32(bounds.Min.X) + (w-sx*scale)/2,
		offY:  float32(bounds.Min.Y) + (h-sy*scale)/2,
		spanY: sy * scale,
	}
}

func (pr projection) toPixel(x, y float32) (px, py float32) {
	px = pr.offX + (x-pr.minX)*pr.scale
	py = pr.offY + pr.spanY - (y-pr.minY)*pr.scale
	return px, py
}

func rgb(colors []float32, i uint32) [3]float32 {
	return [3]float32{colors[3*i], colors[3*i+1], colors[3*i+2]}
}

// fillTriangle rasterizes one screen-space triangle using edge functions
// and barycentric color interpolation.
func fillTriangle(img setImage, x0, y0, x1, y1, x2, y2 float32, c0, c1, c2 [3]float32) {
	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	if area < 0 {
		// Back-facing in screen space after the Y flip; reorder so the
		// inside test below works for either input winding.
		x1, y1, x2, y2 = x2, y2, x1, y1
		c1, c2 = c2, c1
		area = -area
	}
	bb := img.Bounds()
	xmin := max(int(math32.Floor(min3(x0, x1, x2))), bb.Min.X)
	xmax := min(int(math32.Ceil(max3(x0, x1, x2))), bb.Max.X-1)
	ymin := max(int(math32.Floor(min3(y0, y1, y2))), bb.Min.Y)
	ymax := min(int(math32.Ceil(max3(y0, y1, y2))), bb.Max.Y-1)
	inv := 1 / area
	for y := ymin; y <= ymax; y++ {
		fy := float32(y) + 0.5
		for x := xmin; x <= xmax; x++ {
			fx := float32(x) + 0.5
			w0 := edgeFn(x1, y1, x2, y2, fx, fy) * inv
			w1 := edgeFn(x2, y2, x0, y0, fx, fy) * inv
			w2 := edgeFn(x0, y0, x1, y1, fx, fy) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			img.Set(x, y, color.RGBA{
				R: uint8(clamp01(w0*c0[0]+w1*c1[0]+w2*c2[0]) * 255),
				G: uint8(clamp01(w0*c0[1]+w1*c1[1]+w2*c2[1]) * 255),
				B: uint8(clamp01(w0*c0[2]+w1*c1[2]+w2*c2[2]) * 255),
				A: 255,
			})
		}
	}
}

// edgeFn is the signed parallelogram area of (b-a, p-a).
func edgeFn(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func drawLine(img setImage, x0, y0, x1, y1 float32, c color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(math32.Max(math32.Abs(dx), math32.Abs(dy))) + 1
	inv := 1 / float32(steps)
	for i := 0; i <= steps; i++ {
		t := float32(i) * inv
		img.Set(int(x0+dx*t), int(y0+dy*t), c)
	}
}

func min3(a, b, c float32) float32 { return math32.Min(a, math32.Min(b, c)) }
func max3(a, b, c float32) float32 { return math32.Max(a, math32.Max(b, c)) }

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	} else if v > 1 {
		return 1
	}
	return v
}
