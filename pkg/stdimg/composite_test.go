package stdimg

import (
	"errors"
	"image/color"
	"testing"
)

func TestApplyMasked(t *testing.T) {
	b := makeSolid(4, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	mask, _ := NewBuffer(4, 1)
	setPixel(mask, 1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	setPixel(mask, 2, 0, color.NRGBA{R: 150, G: 255, B: 255, A: 255}) // below threshold

	out, err := Pipeline{}.ApplyMasked(b, mask, EditSettings{KeyGrayscale: "true"})
	if err != nil {
		t.Fatalf("ApplyMasked: %v", err)
	}
	if out != b {
		t.Fatalf("ApplyMasked should return buf")
	}
	orig := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	for _, x := range []int{0, 2, 3} {
		if got := pixelAt(b, x, 0); got != orig {
			t.Fatalf("unmasked pixel %d changed to %v", x, got)
		}
	}
	if got := pixelAt(b, 1, 0); got.R != got.G || got.G != got.B || got.R == 200 {
		t.Fatalf("masked pixel not grey: %v", got)
	}
}

func TestApplyMaskedSizeMismatch(t *testing.T) {
	b := makeSolid(4, 4, color.NRGBA{A: 255})
	mask := makeSolid(4, 3, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if _, err := (Pipeline{}).ApplyMasked(b, mask, EditSettings{KeySepia: "true"}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestBinarize(t *testing.T) {
	src, _ := NewBuffer(3, 1)
	setPixel(src, 0, 0, color.NRGBA{R: 201, G: 201, B: 201, A: 1})
	setPixel(src, 1, 0, color.NRGBA{R: 200, G: 255, B: 255, A: 255})
	setPixel(src, 2, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	m, err := Binarize(src)
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if pixelAt(m, 0, 0) != white || pixelAt(m, 1, 0) != (color.NRGBA{}) || pixelAt(m, 2, 0) != (color.NRGBA{}) {
		t.Fatalf("mask = %v", m.Pix)
	}
}
