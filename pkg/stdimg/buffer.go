package stdimg

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrUninitializedBuffer is returned when an operation runs before a buffer exists.
	ErrUninitializedBuffer = errors.New("stdimg: uninitialized buffer")

	// ErrDimensionMismatch is returned when two buffers must share a size and do not,
	// or when a buffer's pixel slice does not match its width and height.
	ErrDimensionMismatch = errors.New("stdimg: dimension mismatch")
)

// Buffer is an owned, row-major, non-premultiplied RGBA raster.
// len(Pix) is always Width*Height*4 for a well-formed buffer.
//
// A Buffer has exactly one logical owner at a time. Functions that mutate a
// buffer say so; callers that need an untouched original must Clone first.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a fully transparent buffer.
func NewBuffer(width, height int) (*Buffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrDimensionMismatch, width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: make([]uint8, width*height*4)}, nil
}

// FromImage copies any image.Image into a new Buffer anchored at (0,0).
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, ErrUninitializedBuffer
	}
	n := ToNRGBA(img)
	b := n.Bounds()
	out := &Buffer{Width: b.Dx(), Height: b.Dy(), Pix: make([]uint8, b.Dx()*b.Dy()*4)}
	row := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*row:(y+1)*row], n.Pix[y*n.Stride:y*n.Stride+row])
	}
	return out, nil
}

// NRGBA returns an *image.NRGBA view that shares Pix with the buffer.
func (b *Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{Pix: b.Pix, Stride: b.Width * 4, Rect: image.Rect(0, 0, b.Width, b.Height)}
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Validate checks the buffer exists and that Pix matches the declared size.
func (b *Buffer) Validate() error {
	if b == nil || (b.Pix == nil && b.Width*b.Height != 0) {
		return ErrUninitializedBuffer
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrDimensionMismatch, b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, have %d", ErrDimensionMismatch, b.Width, b.Height, want, len(b.Pix))
	}
	return nil
}

// SameSize reports ErrDimensionMismatch unless a and b have equal dimensions.
func SameSize(a, b *Buffer) error {
	if a == nil || b == nil {
		return ErrUninitializedBuffer
	}
	if a.Width != b.Width || a.Height != b.Height {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	return nil
}

// Empty reports whether the buffer has no pixels.
func (b *Buffer) Empty() bool { return b == nil || b.Width == 0 || b.Height == 0 }

// Fill sets every pixel to the given colour.
func (b *Buffer) Fill(r, g, bl, a uint8) {
	for i := 0; i+3 < len(b.Pix); i += 4 {
		b.Pix[i+0] = r
		b.Pix[i+1] = g
		b.Pix[i+2] = bl
		b.Pix[i+3] = a
	}
}

// offset returns the index of pixel (x,y) in Pix.
func (b *Buffer) offset(x, y int) int { return (y*b.Width + x) * 4 }
