//go:build !nogpu

// Package render draws assembled text geometry headlessly with the
// gogpu/wgpu HAL.
//
// The package consumes the buffers a textmesh.Assembler produces: the
// font atlas is uploaded once as an R8 texture, and each Frame call
// uploads the current vertex (and optional index) buffer, records one
// render pass into an offscreen RGBA target and reads the pixels back.
//
// Vertices are expected in clip space, so the feeding Assembler should
// run with textmesh.ClipspaceCoords set and its backbuffer size matching
// the Frame dimensions.
//
// A Device can be opened standalone via Open, which picks a Vulkan
// adapter, or borrowed from a host application through FromProvider so
// the text pipeline shares the host's GPU resources.
package render
