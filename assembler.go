package textmesh

// DefaultCapacity is the glyph capacity of the package-level assembler
// and the fallback for NewAssembler when given a non-positive capacity.
const DefaultCapacity = 800

// vertexStride is the number of floats per vertex: x, y, u, v.
const vertexStride = 4

// Assembler accumulates textured glyph quads into a reusable vertex
// buffer. Text is appended at the cursor, one quad per visible glyph,
// and the accumulated geometry is handed off with GrabBuffer.
//
// Storage is allocated once by NewAssembler; append operations never
// allocate. An Assembler is not safe for concurrent use. Independent
// goroutines should each own one; they can share a single Font.
type Assembler struct {
	verts   []float32
	indices []uint32

	vertexCount int
	indexCount  int

	cursorX int
	cursorY int

	flags         Flags
	backbufferW   int
	backbufferH   int
	linegapOffset float32
}

// NewAssembler returns an assembler with room for capacity glyphs. A
// non-positive capacity falls back to DefaultCapacity.
//
// The cursor starts at (0, 100) and the backbuffer size at 800x600,
// so geometry is usable before any configuration.
func NewAssembler(capacity int) *Assembler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Assembler{
		verts:       make([]float32, capacity*6*vertexStride),
		indices:     make([]uint32, capacity*6),
		cursorY:     100,
		backbufferW: 800,
		backbufferH: 600,
	}
}

// Capacity returns the number of glyphs the assembler can hold.
func (a *Assembler) Capacity() int {
	return len(a.indices) / 6
}

// SetFlags replaces the assembler's flag set. Toggling CreateIndexBuffer
// clears the buffers; indexed and non-indexed layouts cannot coexist.
func (a *Assembler) SetFlags(flags Flags) {
	if (a.flags^flags)&CreateIndexBuffer != 0 {
		a.ClearBuffer()
	}
	a.flags = flags
}

// Flags returns the current flag set.
func (a *Assembler) Flags() Flags {
	return a.flags
}

// BackbufferSize sets the pixel size used to project positions into
// clip space when ClipspaceCoords is set. Geometry already appended is
// not reprojected.
func (a *Assembler) BackbufferSize(width, height int) {
	a.backbufferW = width
	a.backbufferH = height
}

// MoveCursor places the pen. The Y coordinate is the baseline the next
// glyph sits on.
func (a *Assembler) MoveCursor(x, y int) {
	a.cursorX = x
	a.cursorY = y
}

// Cursor returns the current pen position.
func (a *Assembler) Cursor() (x, y int) {
	return a.cursorX, a.cursorY
}

// SetLinegapOffset widens or narrows the distance NewLine travels. The
// offset is expressed in the font's initialization pixel units and
// scales with the text height like the font's own line gap.
func (a *Assembler) SetLinegapOffset(offset float32) {
	a.linegapOffset = offset
}

// ClearBuffer forgets all appended geometry. The cursor stays where it
// is and the storage is reused by subsequent appends.
func (a *Assembler) ClearBuffer() {
	a.vertexCount = 0
	a.indexCount = 0
}

// full reports whether another glyph would overflow the buffers.
func (a *Assembler) full() bool {
	if a.vertexCount+6 > len(a.verts)/vertexStride {
		return true
	}
	return a.flags&CreateIndexBuffer != 0 && a.indexCount+6 > len(a.indices)
}
