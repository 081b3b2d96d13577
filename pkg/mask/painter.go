// Package mask turns freehand brush strokes into a binary alpha mask aligned
// with an image's pixel grid.
package mask

import (
	"errors"
	"fmt"
	"math"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// Brush size limits in image pixels. The size is used as the disc radius.
const (
	MinBrushSize     = 5
	MaxBrushSize     = 50
	DefaultBrushSize = 20
)

// PreviewOpacity is the alpha of the white wash drawn over the preview canvas.
const PreviewOpacity = 0.8

// ErrInvalidDisplaySize is returned for non-positive display dimensions.
var ErrInvalidDisplaySize = errors.New("mask: invalid display size")

// State is the painter's pointer state.
type State int

const (
	Idle State = iota
	Painting
	Cleared
)

func (s State) String() string {
	switch s {
	case Painting:
		return "painting"
	case Cleared:
		return "cleared"
	}
	return "idle"
}

// Point is a position in display coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one brush dab in image pixel space.
type Stroke struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Painter accumulates strokes against a copy of an image. It is not safe for
// concurrent use.
type Painter struct {
	original *stdimg.Buffer
	canvas   *stdimg.Buffer // original with a translucent white wash where painted
	paint    *stdimg.Buffer // opaque white where painted, transparent elsewhere

	displayW, displayH float64
	brush              float64
	state              State
	strokes            []Stroke
}

// New starts a mask session over src. src itself is never modified.
func New(src *stdimg.Buffer) (*Painter, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	paint, err := stdimg.NewBuffer(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	return &Painter{
		original: src.Clone(),
		canvas:   src.Clone(),
		paint:    paint,
		displayW: float64(src.Width),
		displayH: float64(src.Height),
		brush:    DefaultBrushSize,
	}, nil
}

func (p *Painter) ready() error {
	if p == nil || p.original == nil {
		return stdimg.ErrUninitializedBuffer
	}
	return nil
}

// SetDisplaySize records the size at which the image is shown. Incoming
// points are rescaled from this size to the buffer size.
func (p *Painter) SetDisplaySize(w, h float64) error {
	if err := p.ready(); err != nil {
		return err
	}
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidDisplaySize, w, h)
	}
	p.displayW, p.displayH = w, h
	return nil
}

// SetBrushSize sets the stroke radius, clamped to [MinBrushSize, MaxBrushSize].
func (p *Painter) SetBrushSize(size float64) {
	if math.IsNaN(size) {
		size = DefaultBrushSize
	}
	p.brush = math.Min(MaxBrushSize, math.Max(MinBrushSize, size))
}

// BrushSize reports the current stroke radius.
func (p *Painter) BrushSize() float64 { return p.brush }

// State reports the pointer state.
func (p *Painter) State() State { return p.state }

// toImage converts a display point into buffer coordinates.
func (p *Painter) toImage(pt Point) (float64, float64) {
	sx := float64(p.original.Width) / p.displayW
	sy := float64(p.original.Height) / p.displayH
	return pt.X * sx, pt.Y * sy
}

// BeginStroke puts the pointer down and paints a dab at pt.
func (p *Painter) BeginStroke(pt Point) error {
	if err := p.ready(); err != nil {
		return err
	}
	p.state = Painting
	return p.Paint(pt, p.brush)
}

// ContinueStroke paints a dab at pt while the pointer is down, and does
// nothing otherwise.
func (p *Painter) ContinueStroke(pt Point) error {
	if err := p.ready(); err != nil {
		return err
	}
	if p.state != Painting {
		return nil
	}
	return p.Paint(pt, p.brush)
}

// EndStroke lifts the pointer.
func (p *Painter) EndStroke() {
	if p.state == Painting {
		p.state = Idle
	}
}

// Paint draws a filled disc of radius image pixels centred at the display
// point pt. Pixels whose centre lies inside the disc are replaced.
func (p *Painter) Paint(pt Point, radius float64) error {
	if err := p.ready(); err != nil {
		return err
	}
	if !(radius > 0) {
		return nil
	}
	cx, cy := p.toImage(pt)
	p.strokes = append(p.strokes, Stroke{X: cx, Y: cy, Radius: radius})
	if p.state == Cleared {
		p.state = Idle
	}

	w, h := p.original.Width, p.original.Height
	x0 := max(0, int(math.Floor(cx-radius)))
	x1 := min(w-1, int(math.Ceil(cx+radius)))
	y0 := max(0, int(math.Floor(cy-radius)))
	y1 := min(h-1, int(math.Ceil(cy+radius)))
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			i := (y*w + x) * 4
			pp := p.paint.Pix
			pp[i+0], pp[i+1], pp[i+2], pp[i+3] = 255, 255, 255, 255
			washPixel(p.canvas.Pix[i:i+4], p.original.Pix[i:i+4])
		}
	}
	return nil
}

// washPixel draws white at PreviewOpacity over the original pixel. Repeated
// dabs do not accumulate.
func washPixel(dst, orig []uint8) {
	srcA := PreviewOpacity
	dstA := float64(orig[3]) / 255.0
	outA := srcA + dstA*(1-srcA)
	for c := 0; c < 3; c++ {
		v := (255*srcA + float64(orig[c])*dstA*(1-srcA)) / outA
		dst[c] = uint8(math.Round(math.Min(255, v)))
	}
	dst[3] = uint8(math.Round(outA * 255))
}

// Clear removes all paint, restoring the canvas to the original image.
func (p *Painter) Clear() error {
	if err := p.ready(); err != nil {
		return err
	}
	copy(p.canvas.Pix, p.original.Pix)
	clear(p.paint.Pix)
	p.strokes = nil
	p.state = Cleared
	return nil
}

// Export binarizes the painted area into a fresh mask: opaque white where
// painted, transparent elsewhere. The session is then reset as by Clear.
func (p *Painter) Export() (*stdimg.Buffer, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	m, err := stdimg.Binarize(p.paint)
	if err != nil {
		return nil, err
	}
	if err := p.Clear(); err != nil {
		return nil, err
	}
	return m, nil
}

// Cancel ends the session and releases all buffers.
func (p *Painter) Cancel() {
	p.original, p.canvas, p.paint = nil, nil, nil
	p.strokes = nil
	p.state = Idle
}

// Canvas returns a copy of the preview: the original with painted areas washed white.
func (p *Painter) Canvas() (*stdimg.Buffer, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	return p.canvas.Clone(), nil
}

// Strokes returns a copy of the paint history since the last clear.
func (p *Painter) Strokes() []Stroke {
	return append([]Stroke(nil), p.strokes...)
}

// Size reports the buffer dimensions of the session.
func (p *Painter) Size() (int, int) {
	if p.ready() != nil {
		return 0, 0
	}
	return p.original.Width, p.original.Height
}
