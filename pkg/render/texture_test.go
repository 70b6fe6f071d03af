package render

import (
	"image"
	"image/color"
	"testing"
)

var colorBlue = RGB(0, 0, 255)

// stripe is a 2x1 texture: red on the left, blue on the right.
func stripe() *Texture {
	t := NewTexture(2, 1)
	t.Pixels[0] = ColorRed
	t.Pixels[1] = colorBlue
	return t
}

func TestWrapIndex(t *testing.T) {
	tests := []struct {
		name string
		i, n int
		mode WrapMode
		want int
	}{
		{"repeat inside", 2, 4, WrapRepeat, 2},
		{"repeat past end", 5, 4, WrapRepeat, 1},
		{"repeat negative", -1, 4, WrapRepeat, 3},
		{"clamp low", -3, 4, WrapClamp, 0},
		{"clamp high", 9, 4, WrapClamp, 3},
		{"mirror first copy", 3, 4, WrapMirror, 3},
		{"mirror flipped copy", 4, 4, WrapMirror, 3},
		{"mirror flipped end", 7, 4, WrapMirror, 0},
		{"mirror negative", -1, 4, WrapMirror, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapIndex(tt.i, tt.n, tt.mode); got != tt.want {
				t.Errorf("wrapIndex(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
			}
		})
	}
}

func TestSampleNearest(t *testing.T) {
	tex := stripe()
	tex.Nearest = true

	if got := tex.Sample(0.25, 0.5); got != ColorRed {
		t.Errorf("left half = %v, want red", got)
	}
	if got := tex.Sample(0.75, 0.5); got != colorBlue {
		t.Errorf("right half = %v, want blue", got)
	}
	// Repeat wraps u=1.25 back onto the left texel.
	if got := tex.Sample(1.25, 0.5); got != ColorRed {
		t.Errorf("wrapped sample = %v, want red", got)
	}
}

func TestSampleBilinear(t *testing.T) {
	tex := stripe()
	tex.WrapU = WrapClamp

	// Texel centers sample exactly.
	if got := tex.Sample(0.25, 0.5); got != ColorRed {
		t.Errorf("texel center = %v, want red", got)
	}
	mid := tex.Sample(0.5, 0.5)
	if mid.R < 120 || mid.R > 135 || mid.B < 120 || mid.B > 135 {
		t.Errorf("midpoint = %v, want an even red/blue mix", mid)
	}
}

func TestTextureFromImageTopLeftOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 128})

	tex := TextureFromImage(img)
	tex.Nearest = true
	if got := tex.Sample(0.5, 0.25); got != ColorRed {
		t.Errorf("v=0.25 = %v, want the top row", got)
	}
	if got := tex.Sample(0.5, 0.75); got.B != 255 || got.A != 128 {
		t.Errorf("v=0.75 = %v, want straight-alpha blue", got)
	}
}

func TestEmptyTexture(t *testing.T) {
	var tex Texture
	if got := tex.Sample(0.5, 0.5); got != (Color{}) {
		t.Errorf("empty texture sampled %v", got)
	}
}
