package textmesh

// defaultAssembler backs the package-level functions below. Programs
// assembling a single text buffer can use the package directly the way
// the standard library's flag package wraps flag.CommandLine.
var defaultAssembler = NewAssembler(DefaultCapacity)

// Default returns the assembler behind the package-level functions.
func Default() *Assembler { return defaultAssembler }

// SetFlags sets the flags on the default assembler.
func SetFlags(flags Flags) { defaultAssembler.SetFlags(flags) }

// BackbufferSize sets the clip-space projection size on the default
// assembler.
func BackbufferSize(width, height int) { defaultAssembler.BackbufferSize(width, height) }

// MoveCursor places the default assembler's pen.
func MoveCursor(x, y int) { defaultAssembler.MoveCursor(x, y) }

// SetLinegapOffset adjusts line spacing on the default assembler.
func SetLinegapOffset(offset float32) { defaultAssembler.SetLinegapOffset(offset) }

// AppendGlyph assembles one glyph on the default assembler.
func AppendGlyph(c byte, f *Font, textHeight float32) {
	defaultAssembler.AppendGlyph(c, f, textHeight)
}

// AppendLine assembles text on the default assembler.
func AppendLine(text string, f *Font, textHeight float32) {
	defaultAssembler.AppendLine(text, f, textHeight)
}

// AppendLineCentered assembles centered text on the default assembler.
func AppendLineCentered(text string, f *Font, textHeight float32) {
	defaultAssembler.AppendLineCentered(text, f, textHeight)
}

// AppendLineRight assembles right-aligned text on the default assembler.
func AppendLineRight(text string, f *Font, textHeight float32) {
	defaultAssembler.AppendLineRight(text, f, textHeight)
}

// NewLine moves the default assembler's cursor to the next line.
func NewLine(x int, f *Font, textHeight float32) {
	defaultAssembler.NewLine(x, f, textHeight)
}

// BoundingBox measures text using the default assembler's settings.
func BoundingBox(text string, f *Font, textHeight float32) (width, height float32) {
	return defaultAssembler.BoundingBox(text, f, textHeight)
}

// GrabBuffer returns the default assembler's accumulated geometry.
func GrabBuffer() BufferView { return defaultAssembler.GrabBuffer() }

// ClearBuffer resets the default assembler's geometry.
func ClearBuffer() { defaultAssembler.ClearBuffer() }
