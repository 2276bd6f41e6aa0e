package textmesh

import "math"

// AppendLine assembles quads for each codepoint of text in reading
// order. A '\n' moves the cursor to a new line starting at the X
// position the call began with. Appending stops once the assembler is
// full, leaving the cursor after the last assembled glyph.
func (a *Assembler) AppendLine(text string, f *Font, textHeight float32) {
	lineStartX := a.cursorX
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			a.NewLine(lineStartX, f, textHeight)
			continue
		}
		if a.full() {
			break
		}
		a.appendGlyph(c, f, textHeight, 0)
	}
}

// AppendLineCentered assembles text with each line horizontally
// centered on the cursor's X position.
func (a *Assembler) AppendLineCentered(text string, f *Font, textHeight float32) {
	a.appendAligned(text, f, textHeight, 0.5)
}

// AppendLineRight assembles text right-aligned: each line ends at the
// cursor's X position.
func (a *Assembler) AppendLineRight(text string, f *Font, textHeight float32) {
	a.appendAligned(text, f, textHeight, 1)
}

// appendAligned assembles text line by line, shifting every glyph of a
// line left by anchor times the line's width. The width sums unrounded
// advances; rounding still happens per glyph as the cursor walks, so
// alignment can drift from exact by the accumulated rounding.
func (a *Assembler) appendAligned(text string, f *Font, textHeight float32, anchor float32) {
	if f == nil {
		return
	}
	lineStartX := a.cursorX
	start := 0
	for {
		end := start
		for end < len(text) && text[end] != '\n' {
			end++
		}

		line := text[start:end]
		offset := -lineWidth(line, f, textHeight) * anchor
		for i := 0; i < len(line); i++ {
			if a.full() {
				break
			}
			a.appendGlyph(line[i], f, textHeight, offset)
		}

		if end == len(text) {
			return
		}
		a.NewLine(lineStartX, f, textHeight)
		start = end + 1
	}
}

// NewLine moves the cursor to x on the next line. The vertical step is
// the scaled sum of ascender, negated descender and line gap, with the
// assembler's linegap offset added to the gap before scaling. NewlineAbove
// and FlipY each reverse the direction of travel; set together they
// cancel out.
func (a *Assembler) NewLine(x int, f *Font, textHeight float32) {
	if f == nil {
		return
	}
	a.cursorX = x

	scale := textHeight / f.heightPx
	linegap := f.linegap + a.linegapOffset
	step := int(math.Round(float64((-f.descender + linegap + f.ascender) * scale)))

	if (a.flags&NewlineAbove != 0) == (a.flags&FlipY != 0) {
		a.cursorY += step
	} else {
		a.cursorY -= step
	}
}

// lineWidth sums the scaled, unrounded advances of one line of text.
// Codepoints the font does not cover contribute nothing.
func lineWidth(line string, f *Font, textHeight float32) float32 {
	scale := textHeight / f.heightPx
	var width float32
	for i := 0; i < len(line); i++ {
		if g, ok := f.Glyph(line[i]); ok {
			width += g.Advance * scale
		}
	}
	return width
}
