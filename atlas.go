package textmesh

// Padding between packed glyphs, in pixels. One blank pixel on each
// axis keeps linear samplers from bleeding neighboring glyphs.
const (
	atlasPadX = 1
	atlasPadY = 1
)

// Atlas is the single grayscale bitmap shared by every glyph of a Font.
// Pixels holds Width*Height coverage bytes, one byte per pixel,
// row-major with no row padding. With the default bottom-up layout,
// row 0 is the bottom of the texture; WithTopDownAtlas keeps row 0 at
// the top.
//
// The atlas is written once by NewFont and never mutated afterwards.
// Upload Pixels to a single-channel texture (R8 or equivalent) and
// sample it with the UV rectangles stored on each Glyph.
type Atlas struct {
	Width  int
	Height int
	Pixels []byte
}

// blit copies a glyph bitmap into the atlas at the given position.
// The caller guarantees the bitmap fits.
func (a *Atlas) blit(bm GlyphBitmap, x, y int) {
	for row := 0; row < bm.Height; row++ {
		src := bm.Pixels[row*bm.Width : (row+1)*bm.Width]
		copy(a.Pixels[(y+row)*a.Width+x:], src)
	}
}

// shelfPacker places glyph rectangles left to right in rows of uniform
// height, wrapping to the next row when the current one runs out of
// width. Placements happen in codepoint order, so the layout is
// deterministic for a given glyph set.
type shelfPacker struct {
	atlasWidth int
	rowHeight  int // tallest glyph plus vertical padding
	x, y       int
}

// place reserves a slot w pixels wide and returns its top-left corner.
func (p *shelfPacker) place(w int) (x, y int) {
	if p.x+w > p.atlasWidth {
		p.x = 0
		p.y += p.rowHeight
	}
	x, y = p.x, p.y
	p.x += w + atlasPadX
	return x, y
}

// rows reports how many rows the packer has consumed.
func (p *shelfPacker) rows() int {
	return p.y/p.rowHeight + 1
}

// reset rewinds the packer for a second identical pass.
func (p *shelfPacker) reset() {
	p.x, p.y = 0, 0
}
