package textmesh

import "fmt"

const (
	// RangeFrom and RangeTo bound the default codepoint range covered
	// by a Font: the printable ASCII glyphs.
	RangeFrom byte = ' '
	RangeTo   byte = '~'

	// MaxFontResolution is the largest pixel height NewFont accepts.
	// Rasterizing above this produces atlases too large to be useful as
	// a single texture.
	MaxFontResolution = 100

	// defaultAtlasWidth is the fixed packing width of the atlas.
	defaultAtlasWidth = 400
)

// Glyph holds the metrics and atlas placement of one codepoint,
// rasterized at the font's initialization height.
//
// Width, Height, OffsetX and OffsetY are whole bitmap pixel counts
// stored as floats. Advance keeps its fractional part; rounding happens
// only when the assembler moves its cursor. The UV rectangle addresses
// the glyph's pixels inside the font's atlas.
type Glyph struct {
	Codepoint byte

	Width   float32
	Height  float32
	Advance float32
	OffsetX float32
	OffsetY float32

	MinU, MinV float32
	MaxU, MaxV float32
}

// Font is an immutable glyph set built by NewFont: one packed grayscale
// atlas plus per-glyph metrics at a fixed pixel height. A Font is safe
// for concurrent use once built and can feed any number of Assemblers.
type Font struct {
	heightPx  float32
	ascender  float32
	descender float32
	linegap   float32

	atlas    Atlas
	glyphs   []Glyph
	from, to byte
}

// NewFont decodes TrueType or OpenType font bytes, rasterizes every
// codepoint in the configured range at pixelHeight and packs the
// bitmaps into a single atlas.
//
// The data slice is fully consumed during construction; the caller may
// reuse it afterwards. Vertical metrics are scaled to pixelHeight, with
// the descender negative for fonts that reach below the baseline.
func NewFont(data []byte, pixelHeight float32, opts ...FontOption) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	if pixelHeight > MaxFontResolution {
		return nil, fmt.Errorf("%w: %v > %v", ErrFontResolution, pixelHeight, MaxFontResolution)
	}

	cfg := defaultFontConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.from > cfg.to {
		return nil, fmt.Errorf("%w: %q > %q", ErrInvalidRange, cfg.from, cfg.to)
	}
	if cfg.atlasWidth <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAtlasWidth, cfg.atlasWidth)
	}

	decoded, err := getDecoder(cfg.decoderName).Init(data)
	if err != nil {
		return nil, err
	}

	scale := decoded.ScaleForPixelHeight(pixelHeight)
	ascent, descent, linegap := decoded.VMetrics()

	f := &Font{
		heightPx:  pixelHeight,
		ascender:  float32(ascent) * scale,
		descender: float32(descent) * scale,
		linegap:   float32(linegap) * scale,
		from:      cfg.from,
		to:        cfg.to,
	}

	count := int(cfg.to) - int(cfg.from) + 1
	f.glyphs = make([]Glyph, count)
	bitmaps := make([]GlyphBitmap, count)

	tallest, widest := 0, 0
	for i := range f.glyphs {
		c := rune(int(cfg.from) + i)
		advance, _ := decoded.HMetrics(c)

		bm := decoded.GlyphBitmap(scale, c)
		if !cfg.topDown {
			flipRows(bm)
		}
		bitmaps[i] = bm

		f.glyphs[i] = Glyph{
			Codepoint: byte(c),
			Width:     float32(bm.Width),
			Height:    float32(bm.Height),
			Advance:   float32(advance) * scale,
			OffsetX:   float32(bm.OffsetX),
			OffsetY:   float32(bm.OffsetY),
		}
		tallest = max(tallest, bm.Height)
		widest = max(widest, bm.Width)
	}

	// Pack greedily in codepoint order. A dry run determines how many
	// rows the glyphs consume, which fixes the atlas height.
	packer := shelfPacker{
		atlasWidth: max(cfg.atlasWidth, widest),
		rowHeight:  tallest + atlasPadY,
	}
	for i := range bitmaps {
		packer.place(bitmaps[i].Width)
	}

	f.atlas = Atlas{
		Width:  packer.atlasWidth,
		Height: packer.rows() * packer.rowHeight,
	}
	f.atlas.Pixels = make([]byte, f.atlas.Width*f.atlas.Height)

	packer.reset()
	aw, ah := float32(f.atlas.Width), float32(f.atlas.Height)
	for i := range bitmaps {
		bm := bitmaps[i]
		x, y := packer.place(bm.Width)
		f.atlas.blit(bm, x, y)

		g := &f.glyphs[i]
		g.MinU = float32(x) / aw
		g.MaxU = float32(x+bm.Width) / aw
		g.MinV = float32(y) / ah
		g.MaxV = float32(y+bm.Height) / ah
		if cfg.topDown {
			g.MinV, g.MaxV = g.MaxV, g.MinV
		}
	}

	Logger().Debug("textmesh: font ready",
		"pixelHeight", pixelHeight,
		"glyphs", count,
		"atlasWidth", f.atlas.Width,
		"atlasHeight", f.atlas.Height)

	return f, nil
}

// HeightPx returns the pixel height the font was rasterized at. Text
// appended at other heights is scaled relative to this value.
func (f *Font) HeightPx() float32 { return f.heightPx }

// Ascender returns the scaled distance from the baseline to the top of
// the tallest glyphs. Positive.
func (f *Font) Ascender() float32 { return f.ascender }

// Descender returns the scaled distance from the baseline to the bottom
// of the lowest glyphs. Negative for fonts reaching below the baseline.
func (f *Font) Descender() float32 { return f.descender }

// Linegap returns the font's scaled recommended gap between lines.
func (f *Font) Linegap() float32 { return f.linegap }

// Range returns the inclusive codepoint range the font covers.
func (f *Font) Range() (from, to byte) { return f.from, f.to }

// Atlas returns the font's glyph atlas. The returned struct points at
// the font's pixel storage; treat it as read-only.
func (f *Font) Atlas() *Atlas { return &f.atlas }

// Glyph returns the record for a codepoint and whether the font covers
// it.
func (f *Font) Glyph(c byte) (Glyph, bool) {
	if c < f.from || c > f.to {
		return Glyph{}, false
	}
	return f.glyphs[int(c)-int(f.from)], true
}

// flipRows reverses the row order of a glyph bitmap in place, moving
// its origin between top-left and bottom-left.
func flipRows(bm GlyphBitmap) {
	w := bm.Width
	for top, bot := 0, bm.Height-1; top < bot; top, bot = top+1, bot-1 {
		a := bm.Pixels[top*w : top*w+w]
		b := bm.Pixels[bot*w : bot*w+w]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}
