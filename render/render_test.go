//go:build !nogpu

package render

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/textmesh"
)

// createNoopDevice creates a Device backed by the noop HAL backend.
func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return NewDevice(openDev.Device, openDev.Queue)
}

// assembleText builds a small clip-space buffer view for Frame tests.
func assembleText(t *testing.T, flags textmesh.Flags, width, height int) textmesh.BufferView {
	t.Helper()
	font, err := textmesh.NewFont(goregular.TTF, 24)
	if err != nil {
		t.Fatalf("NewFont failed: %v", err)
	}
	asm := textmesh.NewAssembler(0)
	asm.SetFlags(flags | textmesh.ClipspaceCoords)
	asm.BackbufferSize(width, height)
	asm.MoveCursor(4, 40)
	asm.AppendLine("Hi", font, 24)
	return asm.GrabBuffer()
}

func TestNewRendererNilDevice(t *testing.T) {
	if _, err := NewRenderer(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewRenderer(nil) error = %v, want ErrNilDevice", err)
	}
	if _, err := NewRenderer(&Device{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewRenderer(empty device) error = %v, want ErrNilDevice", err)
	}
}

func TestNewRenderer(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	if r.shader == nil {
		t.Error("expected non-nil shader after NewRenderer")
	}
	if r.uniformLayout == nil {
		t.Error("expected non-nil uniformLayout after NewRenderer")
	}
	if r.pipeLayout == nil {
		t.Error("expected non-nil pipeLayout after NewRenderer")
	}
	if r.pipeline == nil {
		t.Error("expected non-nil pipeline after NewRenderer")
	}
	if r.sampler == nil {
		t.Error("expected non-nil sampler after NewRenderer")
	}
	if r.atlasTex != nil {
		t.Error("expected nil atlasTex before UploadAtlas")
	}
}

func TestRendererDestroyTwice(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	r.Destroy()
	r.Destroy()

	if r.pipeline != nil || r.shader != nil {
		t.Error("expected pipeline resources nil after Destroy")
	}
}

func TestUploadAtlas(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	if err := r.UploadAtlas(nil); !errors.Is(err, ErrEmptyAtlas) {
		t.Errorf("UploadAtlas(nil) error = %v, want ErrEmptyAtlas", err)
	}
	if err := r.UploadAtlas(&textmesh.Atlas{}); !errors.Is(err, ErrEmptyAtlas) {
		t.Errorf("UploadAtlas(empty) error = %v, want ErrEmptyAtlas", err)
	}

	atlas := &textmesh.Atlas{Width: 4, Height: 2, Pixels: make([]byte, 8)}
	if err := r.UploadAtlas(atlas); err != nil {
		t.Fatalf("UploadAtlas failed: %v", err)
	}
	if w, h := r.AtlasSize(); w != 4 || h != 2 {
		t.Errorf("AtlasSize() = (%d, %d), want (4, 2)", w, h)
	}
	if r.atlasTex == nil || r.atlasView == nil {
		t.Error("expected non-nil atlas texture and view after UploadAtlas")
	}

	// A second upload replaces the first.
	bigger := &textmesh.Atlas{Width: 8, Height: 4, Pixels: make([]byte, 32)}
	if err := r.UploadAtlas(bigger); err != nil {
		t.Fatalf("second UploadAtlas failed: %v", err)
	}
	if w, h := r.AtlasSize(); w != 8 || h != 4 {
		t.Errorf("AtlasSize() after replace = (%d, %d), want (8, 4)", w, h)
	}
}

func TestUploadAtlasFromFont(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	font, err := textmesh.NewFont(goregular.TTF, 24)
	if err != nil {
		t.Fatalf("NewFont failed: %v", err)
	}
	if err := r.UploadAtlas(font.Atlas()); err != nil {
		t.Fatalf("UploadAtlas failed: %v", err)
	}
	if w, h := r.AtlasSize(); w != font.Atlas().Width || h != font.Atlas().Height {
		t.Errorf("AtlasSize() = (%d, %d), want (%d, %d)",
			w, h, font.Atlas().Width, font.Atlas().Height)
	}
}

func TestFrameValidation(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	view := assembleText(t, 0, 64, 64)

	if _, err := r.Frame(view, 0, 64, [4]float32{1, 1, 1, 1}); !errors.Is(err, ErrFrameSize) {
		t.Errorf("Frame with zero width error = %v, want ErrFrameSize", err)
	}
	if _, err := r.Frame(view, 64, 64, [4]float32{1, 1, 1, 1}); !errors.Is(err, ErrNoAtlas) {
		t.Errorf("Frame without atlas error = %v, want ErrNoAtlas", err)
	}

	atlas := &textmesh.Atlas{Width: 4, Height: 2, Pixels: make([]byte, 8)}
	if err := r.UploadAtlas(atlas); err != nil {
		t.Fatalf("UploadAtlas failed: %v", err)
	}
	if _, err := r.Frame(textmesh.BufferView{}, 64, 64, [4]float32{1, 1, 1, 1}); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Frame with empty view error = %v, want ErrNoGeometry", err)
	}
}

func TestFrame(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	font, err := textmesh.NewFont(goregular.TTF, 24)
	if err != nil {
		t.Fatalf("NewFont failed: %v", err)
	}
	if err := r.UploadAtlas(font.Atlas()); err != nil {
		t.Fatalf("UploadAtlas failed: %v", err)
	}

	// 64*4 bytes per row is already 256-aligned, so no padding strip.
	view := assembleText(t, 0, 64, 64)
	pixels, err := r.Frame(view, 64, 64, [4]float32{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(pixels) != 64*64*4 {
		t.Errorf("len(pixels) = %d, want %d", len(pixels), 64*64*4)
	}
}

func TestFrameRowPadding(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	font, err := textmesh.NewFont(goregular.TTF, 24)
	if err != nil {
		t.Fatalf("NewFont failed: %v", err)
	}
	if err := r.UploadAtlas(font.Atlas()); err != nil {
		t.Fatalf("UploadAtlas failed: %v", err)
	}

	// 50*4 = 200 bytes per row forces the 256-aligned staging copy and
	// the padding strip on readback.
	view := assembleText(t, 0, 50, 40)
	pixels, err := r.Frame(view, 50, 40, [4]float32{0, 0, 0, 1})
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(pixels) != 50*40*4 {
		t.Errorf("len(pixels) = %d, want %d", len(pixels), 50*40*4)
	}
}

func TestFrameIndexed(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	font, err := textmesh.NewFont(goregular.TTF, 24)
	if err != nil {
		t.Fatalf("NewFont failed: %v", err)
	}
	if err := r.UploadAtlas(font.Atlas()); err != nil {
		t.Fatalf("UploadAtlas failed: %v", err)
	}

	view := assembleText(t, textmesh.CreateIndexBuffer, 64, 64)
	if view.Indices == nil || view.IndexCount == 0 {
		t.Fatal("expected indexed buffer view")
	}
	pixels, err := r.Frame(view, 64, 64, [4]float32{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("indexed Frame failed: %v", err)
	}
	if len(pixels) != 64*64*4 {
		t.Errorf("len(pixels) = %d, want %d", len(pixels), 64*64*4)
	}
}

func TestFrameReusesTarget(t *testing.T) {
	dev := createNoopDevice(t)

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Destroy()

	font, err := textmesh.NewFont(goregular.TTF, 24)
	if err != nil {
		t.Fatalf("NewFont failed: %v", err)
	}
	if err := r.UploadAtlas(font.Atlas()); err != nil {
		t.Fatalf("UploadAtlas failed: %v", err)
	}

	view := assembleText(t, 0, 64, 64)
	if _, err := r.Frame(view, 64, 64, [4]float32{1, 1, 1, 1}); err != nil {
		t.Fatalf("first Frame failed: %v", err)
	}
	target := r.targetTex
	if _, err := r.Frame(view, 64, 64, [4]float32{1, 0, 0, 1}); err != nil {
		t.Fatalf("second Frame failed: %v", err)
	}
	if r.targetTex != target {
		t.Error("expected target texture reused for same dimensions")
	}
	if _, err := r.Frame(view, 32, 32, [4]float32{1, 1, 1, 1}); err != nil {
		t.Fatalf("resized Frame failed: %v", err)
	}
	if r.targetTex == target {
		t.Error("expected target texture recreated for new dimensions")
	}
}

func TestVertexBytes(t *testing.T) {
	view := textmesh.BufferView{
		Vertices:    []float32{1, -2, 0.5, 0.25},
		VertexCount: 1,
	}
	data := vertexBytes(view)
	if len(data) != vertexStride {
		t.Fatalf("len(data) = %d, want %d", len(data), vertexStride)
	}
	want := []float32{1, -2, 0.5, 0.25}
	for i, w := range want {
		got := binary.LittleEndian.Uint32(data[i*4:])
		if got != math.Float32bits(w) {
			t.Errorf("word %d = %#x, want %#x", i, got, math.Float32bits(w))
		}
	}
}

func TestIndexBytes(t *testing.T) {
	view := textmesh.BufferView{
		Indices:    []uint32{0, 2, 1, 0, 3, 2},
		IndexCount: 6,
	}
	data := indexBytes(view)
	if len(data) != 24 {
		t.Fatalf("len(data) = %d, want 24", len(data))
	}
	for i, w := range view.Indices {
		if got := binary.LittleEndian.Uint32(data[i*4:]); got != w {
			t.Errorf("index %d = %d, want %d", i, got, w)
		}
	}
}

func TestUniformBytes(t *testing.T) {
	data := uniformBytes([4]float32{1, 0.5, 0.25, 0.5})
	if len(data) != uniformSize {
		t.Fatalf("len(data) = %d, want %d", len(data), uniformSize)
	}
	// Color channels are premultiplied by alpha.
	want := []float32{0.5, 0.25, 0.125, 0.5}
	for i, w := range want {
		got := binary.LittleEndian.Uint32(data[i*4:])
		if got != math.Float32bits(w) {
			t.Errorf("channel %d = %#x, want %#x", i, got, math.Float32bits(w))
		}
	}
}

func TestDeviceCloseShared(t *testing.T) {
	dev := createNoopDevice(t)

	dev.Close()
	if dev.device != nil || dev.queue != nil {
		t.Error("expected device detached after Close")
	}
	dev.Close()
}

// fakeProvider implements gpucontext.DeviceProvider plus the HAL
// accessors FromProvider requires.
type fakeProvider struct {
	dev   hal.Device
	queue hal.Queue
}

func (p *fakeProvider) Device() gpucontext.Device   { return nil }
func (p *fakeProvider) Queue() gpucontext.Queue     { return nil }
func (p *fakeProvider) Adapter() gpucontext.Adapter { return nil }
func (p *fakeProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}
func (p *fakeProvider) HalDevice() any { return p.dev }
func (p *fakeProvider) HalQueue() any  { return p.queue }

// bareProvider implements gpucontext.DeviceProvider without exposing
// HAL types.
type bareProvider struct{}

func (bareProvider) Device() gpucontext.Device   { return nil }
func (bareProvider) Queue() gpucontext.Queue     { return nil }
func (bareProvider) Adapter() gpucontext.Adapter { return nil }
func (bareProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

func TestFromProvider(t *testing.T) {
	if _, err := FromProvider(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("FromProvider(nil) error = %v, want ErrNilProvider", err)
	}
	if _, err := FromProvider(bareProvider{}); err == nil {
		t.Error("expected error for provider without HAL accessors")
	}

	noopDev := createNoopDevice(t)
	dev, err := FromProvider(&fakeProvider{dev: noopDev.device, queue: noopDev.queue})
	if err != nil {
		t.Fatalf("FromProvider failed: %v", err)
	}
	if dev.device != noopDev.device {
		t.Error("expected borrowed HAL device")
	}
	if !dev.shared {
		t.Error("expected borrowed device marked shared")
	}

	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer on borrowed device failed: %v", err)
	}
	r.Destroy()
	dev.Close()
}
