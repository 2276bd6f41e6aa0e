package textmesh

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ximageDecoder implements FontDecoder using golang.org/x/image/font/opentype.
type ximageDecoder struct{}

// Init implements FontDecoder.Init.
func (d *ximageDecoder) Init(data []byte) (DecodedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("textmesh: failed to parse font: %w", err)
	}
	return &ximageFont{font: f}, nil
}

// ximageFont implements DecodedFont using sfnt.Font. Metric queries run
// at a ppem equal to the font's units per em, so the 26.6 fixed-point
// results are exact font units. The rasterizing face is rebuilt only
// when the requested scale changes.
type ximageFont struct {
	font *opentype.Font

	face     font.Face
	facePpem float64
}

// upem returns the units per em as a 26.6 ppem value.
func (f *ximageFont) upem() fixed.Int26_6 {
	return fixed.I(int(f.font.UnitsPerEm()))
}

// ScaleForPixelHeight implements DecodedFont.ScaleForPixelHeight.
func (f *ximageFont) ScaleForPixelHeight(px float32) float32 {
	return px / float32(f.font.UnitsPerEm())
}

// VMetrics implements DecodedFont.VMetrics.
func (f *ximageFont) VMetrics() (ascent, descent, linegap int32) {
	var buf sfnt.Buffer

	m, err := f.font.Metrics(&buf, f.upem(), font.HintingNone)
	if err != nil {
		return 0, 0, 0
	}

	// sfnt reports Descent as a positive distance below the baseline.
	return int32(m.Ascent >> 6), -int32(m.Descent >> 6), int32((m.Height - m.Ascent - m.Descent) >> 6)
}

// HMetrics implements DecodedFont.HMetrics.
func (f *ximageFont) HMetrics(c rune) (advance, lsb int32) {
	var buf sfnt.Buffer

	idx, err := f.font.GlyphIndex(&buf, c)
	if err != nil {
		return 0, 0
	}

	adv, err := f.font.GlyphAdvance(&buf, idx, f.upem(), font.HintingNone)
	if err != nil {
		return 0, 0
	}

	bounds, _, err := f.font.GlyphBounds(&buf, idx, f.upem(), font.HintingNone)
	if err != nil {
		return int32(adv >> 6), 0
	}

	return int32(adv >> 6), int32(bounds.Min.X >> 6)
}

// GlyphBitmap implements DecodedFont.GlyphBitmap.
func (f *ximageFont) GlyphBitmap(scale float32, c rune) GlyphBitmap {
	face, err := f.faceForScale(scale)
	if err != nil {
		return GlyphBitmap{}
	}

	bounds, _, ok := face.GlyphBounds(c)
	if !ok {
		return GlyphBitmap{}
	}

	// Convert the 26.6 box to whole pixels, flooring the min corner and
	// ceiling the max corner.
	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6

	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		// Whitespace glyphs carry an advance but no shape.
		return GlyphBitmap{}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(string(c))

	return GlyphBitmap{
		Pixels:  mask.Pix,
		Width:   w,
		Height:  h,
		OffsetX: minX,
		OffsetY: minY,
	}
}

// faceForScale returns a rasterizing face sized so one font unit maps to
// scale pixels. The face is cached between calls at the same scale.
func (f *ximageFont) faceForScale(scale float32) (font.Face, error) {
	ppem := float64(scale) * float64(f.font.UnitsPerEm())
	if f.face != nil && f.facePpem == ppem {
		return f.face, nil
	}
	if f.face != nil {
		_ = f.face.Close()
		f.face = nil
	}

	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    ppem,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}

	f.face = face
	f.facePpem = ppem
	return face, nil
}
