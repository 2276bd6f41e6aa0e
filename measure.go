package textmesh

import "math"

// BoundingBox measures text without assembling any geometry. It returns
// the width of the widest line and the summed height of every line, in
// the same pixel units AppendLine would emit at textHeight.
//
// Width mirrors emission: the pen advances by the rounded advance of
// each glyph, and the last glyph of a line contributes its actual right
// edge (offset plus bitmap width) instead of its advance. Height counts
// one line per terminator, plus the final line when it holds at least
// one glyph, each line standing ascender minus descender plus line gap
// tall. Codepoints the font does not cover are skipped. Empty text
// measures (0, 0).
func (a *Assembler) BoundingBox(text string, f *Font, textHeight float32) (width, height float32) {
	if f == nil {
		return 0, 0
	}

	scale := textHeight / f.heightPx
	lineDelta := (f.ascender - f.descender + f.linegap + a.linegapOffset) * scale

	var penX float32
	var last Glyph
	lineHasGlyph := false

	flushLine := func() {
		if lineHasGlyph {
			width = max(width, penX+(last.OffsetX+last.Width)*scale)
		}
		penX = 0
		lineHasGlyph = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			flushLine()
			height += lineDelta
			continue
		}
		g, ok := f.Glyph(c)
		if !ok {
			continue
		}
		if lineHasGlyph {
			penX += float32(math.Round(float64(last.Advance * scale)))
		}
		last = g
		lineHasGlyph = true
	}
	if lineHasGlyph {
		height += lineDelta
	}
	flushLine()

	return width, height
}
