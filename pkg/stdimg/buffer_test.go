package stdimg

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func makeSolid(w, h int, c color.NRGBA) *Buffer {
	b, _ := NewBuffer(w, h)
	b.Fill(c.R, c.G, c.B, c.A)
	return b
}

func setPixel(b *Buffer, x, y int, c color.NRGBA) {
	i := b.offset(x, y)
	b.Pix[i+0] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

func pixelAt(b *Buffer, x, y int) color.NRGBA {
	i := b.offset(x, y)
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

func TestValidate(t *testing.T) {
	var nilBuf *Buffer
	if err := nilBuf.Validate(); !errors.Is(err, ErrUninitializedBuffer) {
		t.Fatalf("nil buffer: got %v", err)
	}
	bad := &Buffer{Width: 2, Height: 2, Pix: make([]uint8, 15)}
	if err := bad.Validate(); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("short Pix: got %v", err)
	}
	empty := &Buffer{}
	if err := empty.Validate(); err != nil {
		t.Fatalf("zero-area buffer should be valid, got %v", err)
	}
	if _, err := NewBuffer(-1, 3); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("negative size: got %v", err)
	}
}

func TestFromImageOffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	img.SetNRGBA(5, 5, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	img.SetNRGBA(7, 6, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if b.Width != 3 || b.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", b.Width, b.Height)
	}
	if got := pixelAt(b, 0, 0); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Fatalf("top-left = %v", got)
	}
	if got := pixelAt(b, 2, 1); got != (color.NRGBA{R: 9, G: 8, B: 7, A: 255}) {
		t.Fatalf("bottom-right = %v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := makeSolid(2, 2, color.NRGBA{R: 10, A: 255})
	b := a.Clone()
	b.Pix[0] = 99
	if a.Pix[0] != 10 {
		t.Fatalf("clone aliases source")
	}
	if err := SameSize(a, b); err != nil {
		t.Fatalf("SameSize: %v", err)
	}
	c := makeSolid(3, 2, color.NRGBA{})
	if err := SameSize(a, c); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("SameSize mismatch: got %v", err)
	}
}

func TestNRGBASharesPix(t *testing.T) {
	b := makeSolid(2, 1, color.NRGBA{A: 255})
	v := b.NRGBA()
	v.SetNRGBA(1, 0, color.NRGBA{R: 200, A: 255})
	if got := pixelAt(b, 1, 0); got.R != 200 {
		t.Fatalf("view write not visible in buffer: %v", got)
	}
}
