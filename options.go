package textmesh

// FontOption configures NewFont.
type FontOption func(*fontConfig)

// fontConfig holds configuration for font initialization.
type fontConfig struct {
	decoderName string
	from, to    byte
	atlasWidth  int
	topDown     bool
}

// defaultFontConfig returns the default font configuration.
func defaultFontConfig() fontConfig {
	return fontConfig{
		decoderName: defaultDecoderName, // Default decoder (ximage)
		from:        RangeFrom,
		to:          RangeTo,
		atlasWidth:  defaultAtlasWidth,
	}
}

// WithDecoder specifies the font decoder backend.
// The default is "ximage" which uses golang.org/x/image/font/opentype.
//
// Custom decoders can be registered with RegisterDecoder.
// This allows using alternative font decoding libraries such as the
// bundled "gotext" backend (github.com/go-text/typesetting).
func WithDecoder(name string) FontOption {
	return func(c *fontConfig) {
		c.decoderName = name
	}
}

// WithRange sets the codepoint range the atlas covers, inclusive on
// both ends. The default spans the printable ASCII glyphs ' ' to '~'.
func WithRange(from, to byte) FontOption {
	return func(c *fontConfig) {
		c.from = from
		c.to = to
	}
}

// WithAtlasWidth sets the fixed packing width of the atlas in pixels.
// The default is 400. The atlas height follows from the glyphs packed
// into it.
func WithAtlasWidth(w int) FontOption {
	return func(c *fontConfig) {
		c.atlasWidth = w
	}
}

// WithTopDownAtlas keeps atlas rows in the top-to-bottom order the
// rasterizer produced, for renderers that sample with a top-left UV
// origin. Glyph V coordinates are swapped to match, so emitted quads
// stay upright. By default rows are flipped so V grows from the
// atlas's bottom-left corner, the OpenGL convention.
func WithTopDownAtlas() FontOption {
	return func(c *fontConfig) {
		c.topDown = true
	}
}
