//go:build !nogpu

package render

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/textmesh"
)

// Embedded text shader source.
//
//go:embed shaders/text.wgsl
var textShaderSource string

// Rendering errors.
var (
	// ErrNilDevice is returned when constructing a renderer without a device.
	ErrNilDevice = errors.New("render: nil device")

	// ErrNoAtlas is returned by Frame before any UploadAtlas call.
	ErrNoAtlas = errors.New("render: no atlas uploaded")

	// ErrNoGeometry is returned by Frame for an empty buffer view.
	ErrNoGeometry = errors.New("render: buffer view holds no geometry")

	// ErrEmptyAtlas is returned by UploadAtlas for a zero-sized atlas.
	ErrEmptyAtlas = errors.New("render: atlas has no pixels")

	// ErrFrameSize is returned by Frame for non-positive dimensions.
	ErrFrameSize = errors.New("render: frame dimensions must be positive")
)

// vertexStride is the byte stride per vertex. Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes  (location 0)
//	tex_coord (vec2<f32>) = 8 bytes  (location 1)
//
// Total = 16 bytes, matching what Assembler.GrabBuffer produces.
const vertexStride = 16

// uniformSize is the byte size of the text uniform buffer:
// color (vec4<f32>) = 16 bytes.
const uniformSize = 16

// Renderer draws assembled text geometry into an offscreen RGBA target
// and reads the pixels back.
//
// A renderer holds one glyph atlas at a time; UploadAtlas replaces it.
// Frame uploads the given buffer view, records a single render pass and
// returns tightly packed RGBA pixels. The renderer is not safe for
// concurrent use.
type Renderer struct {
	dev *Device

	// Pipeline objects, created once in NewRenderer.
	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
	sampler       hal.Sampler

	// Current glyph atlas texture.
	atlasTex  hal.Texture
	atlasView hal.TextureView
	atlasW    int
	atlasH    int

	// Offscreen render target, recreated when the frame size changes.
	targetTex  hal.Texture
	targetView hal.TextureView
	targetW    int
	targetH    int
}

// NewRenderer creates a renderer on the given device, compiling the
// text shader and building the render pipeline up front.
func NewRenderer(dev *Device) (*Renderer, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrNilDevice
	}
	r := &Renderer{dev: dev}
	if err := r.createPipeline(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// compileShader compiles WGSL source to SPIR-V words via naga.
func compileShader(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("render: compile shader: %w", err)
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createPipeline compiles the text shader and creates the render
// pipeline with premultiplied alpha blending.
func (r *Renderer) createPipeline() error {
	device := r.dev.device

	spirv, err := compileShader(textShaderSource)
	if err != nil {
		return err
	}
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "text_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("render: create shader module: %w", err)
	}
	r.shader = shader

	// Bind group layout:
	//   Binding 0: TextUniforms (uniform buffer, fragment)
	//   Binding 1: glyph atlas texture (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	uniformLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "text_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render: create uniform layout: %w", err)
	}
	r.uniformLayout = uniformLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "text_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("render: create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "text_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("render: create sampler: %w", err)
	}
	r.sampler = sampler

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "text_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    textVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("render: create pipeline: %w", err)
	}
	r.pipeline = pipeline

	return nil
}

// textVertexLayout returns the vertex buffer layout for the text
// pipeline. Matches VertexInput in text.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
func textVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}

// UploadAtlas uploads a font atlas as the R8 glyph texture sampled by
// the fragment shader. Any previously uploaded atlas is destroyed.
func (r *Renderer) UploadAtlas(atlas *textmesh.Atlas) error {
	if atlas == nil || atlas.Width <= 0 || atlas.Height <= 0 {
		return ErrEmptyAtlas
	}
	device := r.dev.device

	if r.atlasView != nil {
		device.DestroyTextureView(r.atlasView)
		r.atlasView = nil
	}
	if r.atlasTex != nil {
		device.DestroyTexture(r.atlasTex)
		r.atlasTex = nil
	}

	w := uint32(atlas.Width)
	h := uint32(atlas.Height)
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyph_atlas",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: create atlas texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "glyph_atlas_view",
		Format:        gputypes.TextureFormatR8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("render: create atlas view: %w", err)
	}

	// WriteTexture has no row alignment requirement, so the tightly
	// packed atlas uploads as is.
	r.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		atlas.Pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	r.atlasTex = tex
	r.atlasView = view
	r.atlasW = atlas.Width
	r.atlasH = atlas.Height

	textmesh.Logger().Debug("render: atlas uploaded",
		"width", atlas.Width, "height", atlas.Height)
	return nil
}

// ensureTarget creates the offscreen render target, reusing the
// existing one when the size is unchanged.
func (r *Renderer) ensureTarget(width, height int) error {
	if r.targetTex != nil && r.targetW == width && r.targetH == height {
		return nil
	}
	device := r.dev.device

	if r.targetView != nil {
		device.DestroyTextureView(r.targetView)
		r.targetView = nil
	}
	if r.targetTex != nil {
		device.DestroyTexture(r.targetTex)
		r.targetTex = nil
	}

	w := uint32(width)
	h := uint32(height)
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "text_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("render: create target texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "text_target_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("render: create target view: %w", err)
	}

	r.targetTex = tex
	r.targetView = view
	r.targetW = width
	r.targetH = height
	return nil
}

// vertexBytes serializes the view's vertices into raw bytes for GPU
// upload, 16 bytes per vertex in little-endian float32.
func vertexBytes(view textmesh.BufferView) []byte {
	data := make([]byte, view.VertexCount*vertexStride)
	for i := 0; i < view.VertexCount*4; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(view.Vertices[i]))
	}
	return data
}

// indexBytes serializes the view's indices into raw bytes for GPU
// upload, 4 bytes per index in little-endian uint32.
func indexBytes(view textmesh.BufferView) []byte {
	data := make([]byte, view.IndexCount*4)
	for i := 0; i < view.IndexCount; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], view.Indices[i])
	}
	return data
}

// uniformBytes builds the 16-byte uniform buffer holding the text color
// with premultiplied alpha.
func uniformBytes(color [4]float32) []byte {
	buf := make([]byte, uniformSize)
	a := color[3]
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(color[0]*a))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(color[1]*a))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(color[2]*a))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(a))
	return buf
}

// Frame renders the buffer view into a width by height target and
// returns the pixels as tightly packed RGBA, row 0 at the top.
//
// Vertices must be in clip space; assemble them with ClipspaceCoords
// set and the assembler's backbuffer sized width by height. The target
// is cleared to transparent black and the text drawn in the given
// color, premultiplied.
func (r *Renderer) Frame(view textmesh.BufferView, width, height int, color [4]float32) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrFrameSize
	}
	if r.atlasView == nil {
		return nil, ErrNoAtlas
	}
	indexed := view.Indices != nil
	if view.VertexCount == 0 || (indexed && view.IndexCount == 0) {
		return nil, ErrNoGeometry
	}
	if err := r.ensureTarget(width, height); err != nil {
		return nil, err
	}

	device := r.dev.device
	queue := r.dev.queue

	// Per-frame buffers.
	vertData := vertexBytes(view)
	vertBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_vertices",
		Size:  uint64(len(vertData)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create vertex buffer: %w", err)
	}
	defer device.DestroyBuffer(vertBuf)
	if err := queue.WriteBuffer(vertBuf, 0, vertData); err != nil {
		return nil, fmt.Errorf("render: write vertex buffer: %w", err)
	}

	var idxBuf hal.Buffer
	if indexed {
		idxData := indexBytes(view)
		idxBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
			Label: "text_indices",
			Size:  uint64(len(idxData)),
			Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("render: create index buffer: %w", err)
		}
		defer device.DestroyBuffer(idxBuf)
		if err := queue.WriteBuffer(idxBuf, 0, idxData); err != nil {
			return nil, fmt.Errorf("render: write index buffer: %w", err)
		}
	}

	uniformData := uniformBytes(color)
	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create uniform buffer: %w", err)
	}
	defer device.DestroyBuffer(uniformBuf)
	if err := queue.WriteBuffer(uniformBuf, 0, uniformData); err != nil {
		return nil, fmt.Errorf("render: write uniform buffer: %w", err)
	}

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "text_bind_group",
		Layout: r.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: gputypes.TextureViewHandle(r.atlasView.NativeHandle())}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: gputypes.SamplerHandle(r.sampler.NativeHandle())}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: create bind group: %w", err)
	}
	defer device.DestroyBindGroup(bindGroup)

	return r.encodeSubmitReadback(vertBuf, idxBuf, bindGroup, view, width, height)
}

// encodeSubmitReadback records the render pass, copies the target to a
// staging buffer, submits, waits, and reads back pixels.
func (r *Renderer) encodeSubmitReadback(
	vertBuf, idxBuf hal.Buffer,
	bindGroup hal.BindGroup,
	view textmesh.BufferView,
	width, height int,
) ([]byte, error) {
	device := r.dev.device
	queue := r.dev.queue
	w := uint32(width)
	h := uint32(height)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "text_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("render: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("text_frame"); err != nil {
		return nil, fmt.Errorf("render: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "text_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.targetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(r.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	if idxBuf != nil {
		rp.SetIndexBuffer(idxBuf, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(uint32(view.IndexCount), 1, 0, 0, 0)
	} else {
		rp.Draw(uint32(view.VertexCount), 1, 0, 0)
	}
	rp.End()

	// CopyTextureToBuffer requires the texture in copy-source layout on
	// Vulkan. No-op on the noop backend.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// Buffer copies require BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("render: create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(r.targetTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Return the target to render-attachment layout for the next frame.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("render: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("render: create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("render: submit: %w", err)
	}
	fenceOK, err := device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("render: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("render: readback: %w", err)
	}

	if alignedBytesPerRow == bytesPerRow {
		return readback, nil
	}
	// Strip per-row padding from the aligned readback data.
	tight := make([]byte, uint64(bytesPerRow)*uint64(h))
	for row := uint32(0); row < h; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * int(bytesPerRow)
		copy(tight[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
	}
	return tight, nil
}

// AtlasSize returns the dimensions of the uploaded atlas texture, or
// zeros before the first UploadAtlas call.
func (r *Renderer) AtlasSize() (width, height int) {
	return r.atlasW, r.atlasH
}

// Destroy releases all GPU resources held by the renderer. Safe to
// call multiple times.
func (r *Renderer) Destroy() {
	if r.dev == nil || r.dev.device == nil {
		return
	}
	device := r.dev.device

	if r.targetView != nil {
		device.DestroyTextureView(r.targetView)
		r.targetView = nil
	}
	if r.targetTex != nil {
		device.DestroyTexture(r.targetTex)
		r.targetTex = nil
	}
	if r.atlasView != nil {
		device.DestroyTextureView(r.atlasView)
		r.atlasView = nil
	}
	if r.atlasTex != nil {
		device.DestroyTexture(r.atlasTex)
		r.atlasTex = nil
	}
	if r.sampler != nil {
		device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.pipeline != nil {
		device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.uniformLayout != nil {
		device.DestroyBindGroupLayout(r.uniformLayout)
		r.uniformLayout = nil
	}
	if r.shader != nil {
		device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}
