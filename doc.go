// Package textmesh turns strings into GPU-ready geometry.
//
// # Overview
//
// textmesh is a pure Go text-to-geometry assembler designed to integrate
// with the GoGPU ecosystem. It decodes a TrueType or OpenType font,
// rasterizes a codepoint range into a single grayscale atlas, and
// assembles lines of text into an interleaved (x, y, u, v) vertex
// buffer with an optional index buffer. The output is renderer-agnostic:
// upload the atlas as a single-channel texture, the vertices to a
// vertex buffer, and draw with any graphics API.
//
// # Quick Start
//
//	import "github.com/gogpu/textmesh"
//
//	// Build a font atlas at 32 px from TTF bytes.
//	font, err := textmesh.NewFont(ttfData, 32)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Assemble a line of text at the cursor.
//	asm := textmesh.NewAssembler(textmesh.DefaultCapacity)
//	asm.MoveCursor(40, 80)
//	asm.AppendLine("Hello, world!", font, 32)
//
//	// Hand the geometry to the renderer.
//	buf := asm.GrabBuffer()
//	upload(font.Atlas(), buf.Vertices)
//
// # Coordinate System
//
// By default positions are in screen pixels:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - The cursor's Y is the text baseline
//
// FlipY switches to a bottom-left origin with Y increasing up, and
// ClipspaceCoords projects positions into [-1, 1] clip space using the
// backbuffer size. Triangles wind counter-clockwise as displayed in
// screen space, with or without FlipY, and stay counter-clockwise in
// clip space under ClipspaceCoords alone; combining ClipspaceCoords
// with FlipY reverses them to clockwise. Set rasterizer culling
// accordingly.
//
// Atlas UVs have their origin at the texture's bottom-left corner, the
// OpenGL convention; WithTopDownAtlas flips the atlas and its UVs for
// top-left-origin samplers.
//
// # Concurrency
//
// A Font is immutable once built and safe to share. Each Assembler is
// single-goroutine; create one per goroutine and share the Font.
package textmesh

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
