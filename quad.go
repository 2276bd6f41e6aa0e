package textmesh

import "math"

// AppendGlyph assembles one textured quad for the codepoint at the
// cursor, then advances the cursor by the glyph's scaled advance width.
// textHeight is the desired text size in pixels; glyph metrics scale by
// textHeight relative to the font's initialization height.
//
// Codepoints outside the font's range and appends beyond the
// assembler's capacity are skipped without reporting: the cursor does
// not move and no geometry is emitted.
func (a *Assembler) AppendGlyph(c byte, f *Font, textHeight float32) {
	a.appendGlyph(c, f, textHeight, 0)
}

// appendGlyph emits one glyph quad whose left edge is shifted by
// xOffset screen pixels from the cursor. The aligned append paths use
// the shift to pull whole lines left of the cursor.
func (a *Assembler) appendGlyph(c byte, f *Font, textHeight float32, xOffset float32) {
	if f == nil {
		return
	}
	g, ok := f.Glyph(c)
	if !ok {
		return
	}
	if a.full() {
		return
	}

	scale := textHeight / f.heightPx
	advance := g.Advance * scale
	w := g.Width * scale
	h := g.Height * scale
	offX := g.OffsetX * scale
	offY := g.OffsetY * scale

	cx, cy := float32(a.cursorX), float32(a.cursorY)

	// The glyph offset points from the pen to the bitmap's top-left
	// corner, so with Y down the quad's top edge is the nearer one.
	top := cy + offY
	bot := cy + offY + h
	left := cx + offX + xOffset
	right := cx + offX + w + xOffset
	if a.flags&FlipY != 0 {
		top = cy - offY
		bot = cy - offY - h
	}

	if a.flags&ClipspaceCoords != 0 {
		bw := float32(a.backbufferW)
		bh := float32(a.backbufferH)
		top = 1 - top/bh*2
		bot = 1 - bot/bh*2
		left = left/bw*2 - 1
		right = right/bw*2 - 1
	}

	if a.flags&CreateIndexBuffer != 0 {
		v := a.verts[a.vertexCount*vertexStride:]
		v[0], v[1], v[2], v[3] = left, bot, g.MinU, g.MinV
		v[4], v[5], v[6], v[7] = left, top, g.MinU, g.MaxV
		v[8], v[9], v[10], v[11] = right, top, g.MaxU, g.MaxV
		v[12], v[13], v[14], v[15] = right, bot, g.MaxU, g.MinV

		base := uint32(a.vertexCount)
		idx := a.indices[a.indexCount:]
		idx[0], idx[1], idx[2] = base, base+2, base+1
		idx[3], idx[4], idx[5] = base, base+3, base+2

		a.vertexCount += 4
		a.indexCount += 6
	} else {
		v := a.verts[a.vertexCount*vertexStride:]
		v[0], v[1], v[2], v[3] = left, bot, g.MinU, g.MinV
		v[4], v[5], v[6], v[7] = right, top, g.MaxU, g.MaxV
		v[8], v[9], v[10], v[11] = left, top, g.MinU, g.MaxV
		v[12], v[13], v[14], v[15] = right, bot, g.MaxU, g.MinV
		v[16], v[17], v[18], v[19] = right, top, g.MaxU, g.MaxV
		v[20], v[21], v[22], v[23] = left, bot, g.MinU, g.MinV

		a.vertexCount += 6
	}

	a.cursorX += int(math.Round(float64(advance)))
}
