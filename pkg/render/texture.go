package render

import (
	"image"
	"image/color"
	"math"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
	WrapMirror                 // Tile, flipping every other copy
)

// Texture is a base color image addressed in glTF UV space, where (0,0) is
// the top-left texel. Sampling is bilinear unless Nearest is set.
type Texture struct {
	Width   int
	Height  int
	Pixels  []Color // Row-major, straight alpha
	WrapU   WrapMode
	WrapV   WrapMode
	Nearest bool
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// SolidTexture is a single texel of c.
func SolidTexture(c Color) *Texture {
	t := NewTexture(1, 1)
	t.Pixels[0] = c
	return t
}

// TextureFromImage copies an image into a texture, keeping straight
// (non-premultiplied) alpha so material alpha stays separate.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	tex := NewTexture(b.Dx(), b.Dy())
	for y := range tex.Height {
		row := tex.Pixels[y*tex.Width:]
		for x := range tex.Width {
			row[x] = Color(color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA))
		}
	}
	return tex
}

// At returns the texel at (x, y) after applying the wrap modes.
func (t *Texture) At(x, y int) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	x = wrapIndex(x, t.Width, t.WrapU)
	y = wrapIndex(y, t.Height, t.WrapV)
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates (0-1 range).
func (t *Texture) Sample(u, v float64) Color {
	// Texel centers sit at half-integer coordinates.
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	if t.Nearest {
		return t.At(int(math.Floor(fx+0.5)), int(math.Floor(fy+0.5)))
	}

	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	top := lerpColor(t.At(ix, iy), t.At(ix+1, iy), tx)
	bot := lerpColor(t.At(ix, iy+1), t.At(ix+1, iy+1), tx)
	return lerpColor(top, bot, ty)
}

// wrapIndex maps texel index i into [0, n).
func wrapIndex(i, n int, mode WrapMode) int {
	switch mode {
	case WrapClamp:
		return max(0, min(n-1, i))
	case WrapMirror:
		period := 2 * n
		i = ((i % period) + period) % period
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		return ((i % n) + n) % n
	}
}
