package textmesh

import "strings"

// Flags controls how an Assembler lays out the geometry it produces.
//
// Flags are set per-Assembler with SetFlags and take effect on the next
// append. The zero value emits non-indexed screen-space geometry with +Y
// pointing down and NewLine moving toward the bottom of the screen,
// which matches the top-left-origin convention of most 2D APIs.
type Flags uint32

const (
	// CreateIndexBuffer emits four unique vertices per glyph together
	// with six indices instead of six expanded vertices. Toggling this
	// flag clears the assembler's buffers; the two layouts cannot be
	// mixed in one buffer.
	CreateIndexBuffer Flags = 1 << iota

	// ClipspaceCoords maps vertex positions from screen space into
	// [-1, 1] clip space using the size set with BackbufferSize.
	// Positions are divided by the backbuffer size, so geometry assembled
	// under this flag is resolution-dependent.
	ClipspaceCoords

	// NewlineAbove reverses the direction NewLine travels, placing each
	// subsequent line above the previous one.
	NewlineAbove

	// FlipY treats +Y as up in screen space. Glyphs rise above the
	// baseline toward larger Y and NewLine moves toward smaller Y.
	FlipY
)

// String returns the set flags as a "|" separated list.
func (f Flags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	if f&CreateIndexBuffer != 0 {
		parts = append(parts, "CreateIndexBuffer")
	}
	if f&ClipspaceCoords != 0 {
		parts = append(parts, "ClipspaceCoords")
	}
	if f&NewlineAbove != 0 {
		parts = append(parts, "NewlineAbove")
	}
	if f&FlipY != 0 {
		parts = append(parts, "FlipY")
	}
	return strings.Join(parts, "|")
}
