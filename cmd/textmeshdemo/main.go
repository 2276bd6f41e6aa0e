// Command textmeshdemo assembles a line of text with textmesh and bakes
// it into a PNG, either through the CPU blitter or the GPU renderer.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"strings"
	"unicode"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/textmesh"
	"github.com/gogpu/textmesh/render"
)

const margin = 8

func main() {
	var (
		fontPath = flag.String("font", "", "TrueType font file (default: embedded Go Regular)")
		text     = flag.String("text", "Hello, textmesh!", "text to render; \\n starts a new line")
		height   = flag.Float64("height", 48, "text height in pixels")
		out      = flag.String("out", "text.png", "output PNG file")
		centered = flag.Bool("centered", false, "center each line")
		atlas    = flag.Bool("atlas", false, "dump the font atlas instead of the text")
		gpu      = flag.Bool("gpu", false, "render through the GPU instead of the CPU blitter")
	)
	flag.Parse()

	data := goregular.TTF
	if *fontPath != "" {
		b, err := os.ReadFile(*fontPath)
		if err != nil {
			log.Fatalf("read font: %v", err)
		}
		data = b
	}

	// The atlas is rasterized at the capped height; larger text heights
	// scale the same glyphs up at assembly time.
	initHeight := float32(*height)
	if initHeight > textmesh.MaxFontResolution {
		initHeight = textmesh.MaxFontResolution
	}
	font, err := textmesh.NewFont(data, initHeight)
	if err != nil {
		log.Fatalf("load font: %v", err)
	}

	if *atlas {
		if err := writePNG(*out, atlasImage(font.Atlas())); err != nil {
			log.Fatalf("write atlas: %v", err)
		}
		log.Printf("atlas saved to %s (%dx%d)",
			*out, font.Atlas().Width, font.Atlas().Height)
		return
	}

	line := foldASCII(strings.ReplaceAll(*text, `\n`, "\n"), font)
	th := float32(*height)
	scale := th / font.HeightPx()

	asm := textmesh.NewAssembler(0)
	boxW, boxH := asm.BoundingBox(line, font, th)
	imgW := int(math.Ceil(float64(boxW))) + 2*margin
	imgH := int(math.Ceil(float64(boxH))) + 2*margin
	baseline := margin + int(math.Round(float64(font.Ascender()*scale)))

	if *gpu {
		asm.SetFlags(textmesh.ClipspaceCoords)
		asm.BackbufferSize(imgW, imgH)
	}
	cursorX := margin
	if *centered {
		cursorX = imgW / 2
	}
	asm.MoveCursor(cursorX, baseline)
	if *centered {
		asm.AppendLineCentered(line, font, th)
	} else {
		asm.AppendLine(line, font, th)
	}

	view := asm.GrabBuffer()
	if view.VertexCount == 0 {
		log.Fatalf("no drawable glyphs in %q", *text)
	}

	var img image.Image
	if *gpu {
		img, err = renderGPU(view, font.Atlas(), imgW, imgH)
		if err != nil {
			log.Fatalf("GPU render: %v", err)
		}
	} else {
		img = renderCPU(view, font.Atlas(), imgW, imgH)
	}

	if err := writePNG(*out, img); err != nil {
		log.Fatalf("write image: %v", err)
	}
	log.Printf("text saved to %s (%dx%d, %d vertices)",
		*out, imgW, imgH, view.VertexCount)
}

// foldASCII strips diacritics so accented input still lands in the
// font's single-byte range, then drops every codepoint the range cannot
// hold. Newlines survive the fold.
func foldASCII(s string, font *textmesh.Font) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		folded = s
	}

	from, to := font.Range()
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == '\n':
			b.WriteByte('\n')
		case r >= rune(from) && r <= rune(to):
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// renderCPU samples the atlas across each assembled quad and composes
// black text onto a white background.
func renderCPU(view textmesh.BufferView, atlas *textmesh.Atlas, w, h int) *image.RGBA {
	cov := make([]byte, w*h)
	// Non-indexed quads are 6 vertices; the first two carry opposite
	// corners with their UVs.
	for q := 0; q+24 <= len(view.Vertices); q += 24 {
		blitQuad(cov, w, h,
			view.Vertices[q+0], view.Vertices[q+1], view.Vertices[q+2], view.Vertices[q+3],
			view.Vertices[q+4], view.Vertices[q+5], view.Vertices[q+6], view.Vertices[q+7],
			atlas)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range cov {
		g := 255 - c
		img.SetRGBA(i%w, i/w, color.RGBA{R: g, G: g, B: g, A: 255})
	}
	return img
}

// blitQuad rasterizes one glyph quad spanned by the corners (x0,y0) and
// (x1,y1) into the coverage buffer, keeping the maximum where quads
// overlap.
func blitQuad(cov []byte, w, h int, x0, y0, u0, v0, x1, y1, u1, v1 float32, atlas *textmesh.Atlas) {
	left := int(math.Floor(float64(min(x0, x1))))
	right := int(math.Ceil(float64(max(x0, x1))))
	top := int(math.Floor(float64(min(y0, y1))))
	bottom := int(math.Ceil(float64(max(y0, y1))))

	for py := max(top, 0); py < min(bottom, h); py++ {
		fy := (float32(py) + 0.5 - y0) / (y1 - y0)
		if fy < 0 || fy > 1 {
			continue
		}
		v := v0 + fy*(v1-v0)
		for px := max(left, 0); px < min(right, w); px++ {
			fx := (float32(px) + 0.5 - x0) / (x1 - x0)
			if fx < 0 || fx > 1 {
				continue
			}
			u := u0 + fx*(u1-u0)
			if c := sampleAtlas(atlas, u, v); c > cov[py*w+px] {
				cov[py*w+px] = c
			}
		}
	}
}

// sampleAtlas reads the coverage texel nearest to (u, v).
func sampleAtlas(a *textmesh.Atlas, u, v float32) byte {
	x := min(max(int(u*float32(a.Width)), 0), a.Width-1)
	y := min(max(int(v*float32(a.Height)), 0), a.Height-1)
	return a.Pixels[y*a.Width+x]
}

// renderGPU draws the clip-space view through the render package and
// composes the premultiplied result over a white background.
func renderGPU(view textmesh.BufferView, atlas *textmesh.Atlas, w, h int) (*image.RGBA, error) {
	dev, err := render.Open()
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	r, err := render.NewRenderer(dev)
	if err != nil {
		return nil, err
	}
	defer r.Destroy()

	if err := r.UploadAtlas(atlas); err != nil {
		return nil, err
	}
	pixels, err := r.Frame(view, w, h, [4]float32{0, 0, 0, 1})
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+4 <= len(pixels); i += 4 {
		a := pixels[i+3]
		img.Pix[i+0] = pixels[i+0] + (255 - a)
		img.Pix[i+1] = pixels[i+1] + (255 - a)
		img.Pix[i+2] = pixels[i+2] + (255 - a)
		img.Pix[i+3] = 255
	}
	return img, nil
}

// atlasImage converts the bottom-up atlas into a top-down grayscale
// image for viewing.
func atlasImage(a *textmesh.Atlas) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, a.Width, a.Height))
	for y := 0; y < a.Height; y++ {
		src := a.Pixels[y*a.Width : (y+1)*a.Width]
		copy(img.Pix[(a.Height-1-y)*img.Stride:], src)
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
