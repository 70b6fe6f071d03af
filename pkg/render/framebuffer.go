// Package render is meshpick's software rasterizer: a depth-buffered
// triangle pipeline over a half-block framebuffer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	uv "github.com/charmbracelet/ultraviolet"
)

// halfBlock shows the top pixel as foreground and the bottom one as
// background, doubling vertical resolution.
const halfBlock = "▀"

// Framebuffer holds Width x Height pixels. Each terminal cell covers two
// vertically stacked pixels, so Height is twice the number of rows drawn.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color // Row-major
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the pixel buffer when the size changed.
func (fb *Framebuffer) Resize(width, height int) {
	if width == fb.Width && height == fb.Height && fb.Pixels != nil {
		return
	}
	fb.Width, fb.Height = width, height
	fb.Pixels = make([]Color, width*height)
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// index returns the offset of (x, y), or -1 outside the buffer.
func (fb *Framebuffer) index(x, y int) int {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return -1
	}
	return y*fb.Width + x
}

// SetPixel sets a pixel; writes outside the buffer are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if i := fb.index(x, y); i >= 0 {
		fb.Pixels[i] = c
	}
}

// BlendPixel composites c over the pixel at (x, y) with the given alpha.
func (fb *Framebuffer) BlendPixel(x, y int, c Color, alpha float64) {
	if i := fb.index(x, y); i >= 0 {
		fb.Pixels[i] = BlendColor(fb.Pixels[i], c, alpha)
	}
}

// GetPixel returns the color at (x, y), or transparent black outside.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if i := fb.index(x, y); i >= 0 {
		return fb.Pixels[i]
	}
	return Color{}
}

// The framebuffer is an image.Image, so screenshots encode it directly.

func (fb *Framebuffer) ColorModel() color.Model { return color.RGBAModel }
func (fb *Framebuffer) Bounds() image.Rectangle { return image.Rect(0, 0, fb.Width, fb.Height) }
func (fb *Framebuffer) At(x, y int) color.Color { return fb.GetPixel(x, y) }

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	if err := png.Encode(f, fb); err != nil {
		f.Close()
		return fmt.Errorf("encode screenshot: %w", err)
	}
	return f.Close()
}

// Draw implements uv.Drawable. Pixel rows 2n and 2n+1 become terminal row
// area.Min.Y+n; pixels past the buffer leave their cells untouched.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	rows := min(area.Dy(), (fb.Height+1)/2)
	cols := min(area.Dx(), fb.Width)
	for n := range rows {
		for x := range cols {
			scr.SetCell(area.Min.X+x, area.Min.Y+n, &uv.Cell{
				Content: halfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, 2*n)),
					Bg: cellColor(fb.GetPixel(x, 2*n+1)),
				},
			})
		}
	}
}

// cellColor maps transparent pixels to the terminal default color.
func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
