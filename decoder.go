package textmesh

// FontDecoder is an interface for font decoding backends.
// This abstraction allows swapping the font decoding library
// (e.g., golang.org/x/image/font/opentype vs github.com/go-text/typesetting).
//
// The default implementation uses golang.org/x/image/font/opentype.
type FontDecoder interface {
	// Init decodes font data (TTF or OTF) and returns a DecodedFont.
	Init(data []byte) (DecodedFont, error)
}

// DecodedFont exposes the metric and rasterization queries NewFont needs
// to build an atlas. Metric values are in unscaled font units unless a
// scale is passed in.
//
// A DecodedFont is used by a single goroutine at a time. Implementations
// may cache rasterizer state between calls.
type DecodedFont interface {
	// ScaleForPixelHeight returns the scale factor that maps the font's
	// em square to the given pixel height.
	ScaleForPixelHeight(px float32) float32

	// VMetrics returns ascent, descent and line gap in font units.
	// Descent is negative when glyphs extend below the baseline.
	VMetrics() (ascent, descent, linegap int32)

	// HMetrics returns the advance width and left side bearing of the
	// codepoint in font units. Codepoints missing from the font report
	// the metrics of the font's fallback glyph.
	HMetrics(c rune) (advance, lsb int32)

	// GlyphBitmap rasterizes the codepoint at the given scale into a
	// tightly packed 8-bit coverage bitmap. Rows run top to bottom.
	// The offsets place the bitmap's top-left corner relative to a pen
	// sitting on the baseline, with OffsetY negative for glyphs rising
	// above it. Codepoints with no visible shape return a zero-size
	// bitmap.
	GlyphBitmap(scale float32, c rune) GlyphBitmap
}

// GlyphBitmap is a rasterized glyph image produced by a FontDecoder.
type GlyphBitmap struct {
	// Pixels holds Width*Height coverage bytes, row-major.
	Pixels []byte

	// Width and Height are the bitmap dimensions in pixels.
	Width  int
	Height int

	// OffsetX and OffsetY position the bitmap's top-left corner
	// relative to the baseline pen.
	OffsetX int
	OffsetY int
}

// decoderRegistry holds registered font decoders.
// The default decoder is "ximage" (golang.org/x/image).
var decoderRegistry = map[string]FontDecoder{
	"ximage": &ximageDecoder{},
	"gotext": &gotextDecoder{},
}

// defaultDecoderName is the name of the default decoder.
const defaultDecoderName = "ximage"

// RegisterDecoder registers a custom font decoder.
// This allows users to provide their own decoding implementation.
func RegisterDecoder(name string, decoder FontDecoder) {
	decoderRegistry[name] = decoder
}

// getDecoder returns the decoder by name, or the default if not found.
func getDecoder(name string) FontDecoder {
	if d, ok := decoderRegistry[name]; ok {
		return d
	}
	return decoderRegistry[defaultDecoderName]
}
