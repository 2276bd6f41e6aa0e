package textmesh

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/go-text/typesetting/font"
	api "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"
)

// gotextDecoder implements FontDecoder using github.com/go-text/typesetting.
// Glyph outlines are filled with golang.org/x/image/vector.
type gotextDecoder struct{}

// Init implements FontDecoder.Init.
func (d *gotextDecoder) Init(data []byte) (DecodedFont, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("textmesh: failed to parse font: %w", err)
	}
	return &gotextFont{face: face}, nil
}

// gotextFont implements DecodedFont on a typesetting face.
type gotextFont struct {
	face *font.Face
}

// ScaleForPixelHeight implements DecodedFont.ScaleForPixelHeight.
func (f *gotextFont) ScaleForPixelHeight(px float32) float32 {
	return px / float32(f.face.Upem())
}

// VMetrics implements DecodedFont.VMetrics.
func (f *gotextFont) VMetrics() (ascent, descent, linegap int32) {
	ext, ok := f.face.FontHExtents()
	if !ok {
		return 0, 0, 0
	}
	// Descender already carries its below-baseline sign.
	return roundToInt32(ext.Ascender), roundToInt32(ext.Descender), roundToInt32(ext.LineGap)
}

// HMetrics implements DecodedFont.HMetrics.
func (f *gotextFont) HMetrics(c rune) (advance, lsb int32) {
	gid := f.glyphID(c)
	adv := f.face.HorizontalAdvance(gid)

	outline, ok := f.glyphOutline(gid)
	if ok {
		if minX, _, _, _, nonEmpty := outlineBounds(outline); nonEmpty {
			lsb = int32(math.Floor(float64(minX)))
		}
	}
	return roundToInt32(adv), lsb
}

// GlyphBitmap implements DecodedFont.GlyphBitmap.
func (f *gotextFont) GlyphBitmap(scale float32, c rune) GlyphBitmap {
	outline, ok := f.glyphOutline(f.glyphID(c))
	if !ok {
		return GlyphBitmap{}
	}
	minX, minY, maxX, maxY, nonEmpty := outlineBounds(outline)
	if !nonEmpty {
		// Whitespace glyphs carry an advance but no shape.
		return GlyphBitmap{}
	}

	// Pixel box around the scaled outline. Outline Y grows up, device Y
	// grows down, so the device box top comes from the outline's maxY.
	s := float64(scale)
	x0 := int(math.Floor(float64(minX) * s))
	y0 := int(math.Floor(float64(-maxY) * s))
	x1 := int(math.Ceil(float64(maxX) * s))
	y1 := int(math.Ceil(float64(-minY) * s))

	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return GlyphBitmap{}
	}

	r := vector.NewRasterizer(w, h)
	r.DrawOp = draw.Src
	dev := func(p api.SegmentPoint) (float32, float32) {
		return p.X*scale - float32(x0), -p.Y*scale - float32(y0)
	}

	open := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case api.SegmentOpMoveTo:
			if open {
				r.ClosePath()
			}
			x, y := dev(seg.Args[0])
			r.MoveTo(x, y)
			open = true
		case api.SegmentOpLineTo:
			x, y := dev(seg.Args[0])
			r.LineTo(x, y)
		case api.SegmentOpQuadTo:
			bx, by := dev(seg.Args[0])
			cx, cy := dev(seg.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case api.SegmentOpCubeTo:
			bx, by := dev(seg.Args[0])
			cx, cy := dev(seg.Args[1])
			dx, dy := dev(seg.Args[2])
			r.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		r.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return GlyphBitmap{
		Pixels:  mask.Pix,
		Width:   w,
		Height:  h,
		OffsetX: x0,
		OffsetY: y0,
	}
}

// glyphID maps a codepoint to its glyph, falling back to the font's
// notdef glyph.
func (f *gotextFont) glyphID(c rune) api.GID {
	gid, ok := f.face.NominalGlyph(c)
	if !ok {
		return 0
	}
	return gid
}

// glyphOutline fetches the vector outline of a glyph. Bitmap-only and
// SVG glyphs report no outline.
func (f *gotextFont) glyphOutline(gid api.GID) (font.GlyphOutline, bool) {
	outline, ok := f.face.GlyphData(gid).(font.GlyphOutline)
	return outline, ok
}

// outlineBounds returns the control-point bounding box of an outline in
// font units. The box includes off-curve points, matching the quick box
// TrueType fonts store.
func outlineBounds(outline font.GlyphOutline) (minX, minY, maxX, maxY float32, ok bool) {
	first := true
	grow := func(p api.SegmentPoint) {
		if first {
			minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
			first = false
			return
		}
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	for _, seg := range outline.Segments {
		switch seg.Op {
		case api.SegmentOpMoveTo, api.SegmentOpLineTo:
			grow(seg.Args[0])
		case api.SegmentOpQuadTo:
			grow(seg.Args[0])
			grow(seg.Args[1])
		case api.SegmentOpCubeTo:
			grow(seg.Args[0])
			grow(seg.Args[1])
			grow(seg.Args[2])
		}
	}
	return minX, minY, maxX, maxY, !first
}

// roundToInt32 rounds a float32 metric to the nearest whole font unit.
func roundToInt32(v float32) int32 {
	return int32(math.Round(float64(v)))
}
