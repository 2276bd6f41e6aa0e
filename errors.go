package textmesh

import "errors"

// Sentinel errors returned by font construction.
var (
	// ErrEmptyFontData is returned when NewFont receives no font bytes.
	ErrEmptyFontData = errors.New("textmesh: empty font data")

	// ErrFontResolution is returned when the requested pixel height
	// exceeds MaxFontResolution.
	ErrFontResolution = errors.New("textmesh: pixel height exceeds maximum font resolution")

	// ErrInvalidRange is returned when the configured codepoint range is
	// reversed.
	ErrInvalidRange = errors.New("textmesh: invalid codepoint range")

	// ErrInvalidAtlasWidth is returned when the configured atlas width
	// is not positive.
	ErrInvalidAtlasWidth = errors.New("textmesh: atlas width must be positive")
)
