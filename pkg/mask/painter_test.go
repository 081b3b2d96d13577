package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

func solid(t *testing.T, w, h int, r, g, b uint8) *stdimg.Buffer {
	t.Helper()
	buf, err := stdimg.NewBuffer(w, h)
	require.NoError(t, err)
	buf.Fill(r, g, b, 255)
	return buf
}

func alphaAt(b *stdimg.Buffer, x, y int) uint8 { return b.Pix[(y*b.Width+x)*4+3] }

func countOpaque(b *stdimg.Buffer) int {
	n := 0
	for i := 3; i < len(b.Pix); i += 4 {
		if b.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestExportWithoutStrokesIsTransparent(t *testing.T) {
	// a white source must not leak into the mask
	p, err := New(solid(t, 6, 4, 255, 255, 255))
	require.NoError(t, err)

	m, err := p.Export()
	require.NoError(t, err)
	assert.Equal(t, 6, m.Width)
	assert.Equal(t, 4, m.Height)
	for _, v := range m.Pix {
		require.Zero(t, v)
	}
}

func TestCoveringStrokeIsFullyWhite(t *testing.T) {
	p, err := New(solid(t, 8, 8, 10, 20, 30))
	require.NoError(t, err)
	require.NoError(t, p.Paint(Point{X: 4, Y: 4}, 50))

	m, err := p.Export()
	require.NoError(t, err)
	for i := 0; i < len(m.Pix); i++ {
		require.Equal(t, uint8(255), m.Pix[i], "byte %d", i)
	}
}

func TestDisplayScaling(t *testing.T) {
	p, err := New(solid(t, 100, 100, 0, 0, 0))
	require.NoError(t, err)
	require.NoError(t, p.SetDisplaySize(50, 50))
	p.SetBrushSize(MinBrushSize)

	require.NoError(t, p.BeginStroke(Point{X: 40, Y: 10}))
	p.EndStroke()

	strokes := p.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, Stroke{X: 80, Y: 20, Radius: MinBrushSize}, strokes[0])

	m, err := p.Export()
	require.NoError(t, err)
	assert.Equal(t, uint8(255), alphaAt(m, 80, 20))
	assert.Equal(t, uint8(0), alphaAt(m, 40, 10), "unscaled position must stay clear")
}

func TestContinueWithoutBeginIsNoop(t *testing.T) {
	p, err := New(solid(t, 10, 10, 0, 0, 0))
	require.NoError(t, err)
	require.NoError(t, p.ContinueStroke(Point{X: 5, Y: 5}))
	assert.Empty(t, p.Strokes())
	assert.Equal(t, Idle, p.State())

	require.NoError(t, p.BeginStroke(Point{X: 1, Y: 1}))
	assert.Equal(t, Painting, p.State())
	require.NoError(t, p.ContinueStroke(Point{X: 2, Y: 2}))
	p.EndStroke()
	assert.Equal(t, Idle, p.State())
	require.NoError(t, p.ContinueStroke(Point{X: 3, Y: 3}))
	assert.Len(t, p.Strokes(), 2)
}

func TestClearRestoresOriginal(t *testing.T) {
	src := solid(t, 10, 10, 40, 50, 60)
	p, err := New(src)
	require.NoError(t, err)
	require.NoError(t, p.Paint(Point{X: 5, Y: 5}, 3))

	c, err := p.Canvas()
	require.NoError(t, err)
	i := (5*10 + 5) * 4
	assert.Greater(t, c.Pix[i], uint8(200), "preview should be washed white")

	require.NoError(t, p.Clear())
	assert.Equal(t, Cleared, p.State())
	assert.Empty(t, p.Strokes())
	c, err = p.Canvas()
	require.NoError(t, err)
	assert.Equal(t, src.Pix, c.Pix)

	m, err := p.Export()
	require.NoError(t, err)
	assert.Zero(t, countOpaque(m))
}

func TestExportResetsSession(t *testing.T) {
	p, err := New(solid(t, 10, 10, 0, 0, 0))
	require.NoError(t, err)
	require.NoError(t, p.Paint(Point{X: 5, Y: 5}, 2))

	first, err := p.Export()
	require.NoError(t, err)
	assert.NotZero(t, countOpaque(first))

	second, err := p.Export()
	require.NoError(t, err)
	assert.Zero(t, countOpaque(second))
}

func TestDiscUsesPixelCentres(t *testing.T) {
	p, err := New(solid(t, 10, 10, 0, 0, 0))
	require.NoError(t, err)
	// radius 1 around (5,5) covers the four pixels sharing that corner
	require.NoError(t, p.Paint(Point{X: 5, Y: 5}, 1))
	m, err := p.Export()
	require.NoError(t, err)
	assert.Equal(t, 4, countOpaque(m))
	for _, xy := range [][2]int{{4, 4}, {5, 4}, {4, 5}, {5, 5}} {
		assert.Equal(t, uint8(255), alphaAt(m, xy[0], xy[1]))
	}
}

func TestCancelReleases(t *testing.T) {
	p, err := New(solid(t, 4, 4, 0, 0, 0))
	require.NoError(t, err)
	p.Cancel()

	_, err = p.Export()
	assert.ErrorIs(t, err, stdimg.ErrUninitializedBuffer)
	assert.ErrorIs(t, p.BeginStroke(Point{}), stdimg.ErrUninitializedBuffer)
	assert.ErrorIs(t, p.Clear(), stdimg.ErrUninitializedBuffer)
	_, err = p.Canvas()
	assert.ErrorIs(t, err, stdimg.ErrUninitializedBuffer)
}

func TestSettersValidate(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, stdimg.ErrUninitializedBuffer)

	p, err := New(solid(t, 4, 4, 0, 0, 0))
	require.NoError(t, err)
	assert.ErrorIs(t, p.SetDisplaySize(0, 10), ErrInvalidDisplaySize)
	assert.ErrorIs(t, p.SetDisplaySize(10, -1), ErrInvalidDisplaySize)

	assert.Equal(t, float64(DefaultBrushSize), p.BrushSize())
	p.SetBrushSize(1)
	assert.Equal(t, float64(MinBrushSize), p.BrushSize())
	p.SetBrushSize(500)
	assert.Equal(t, float64(MaxBrushSize), p.BrushSize())
}

func TestSourceUntouched(t *testing.T) {
	src := solid(t, 6, 6, 1, 2, 3)
	before := src.Clone()
	p, err := New(src)
	require.NoError(t, err)
	require.NoError(t, p.Paint(Point{X: 3, Y: 3}, 10))
	assert.Equal(t, before.Pix, src.Pix)
}

func TestRender(t *testing.T) {
	src := solid(t, 40, 20, 0, 0, 0)
	m, err := Render(src, Session{
		DisplayWidth:  20,
		DisplayHeight: 10,
		BrushSize:     5,
		Paths:         []Path{{{X: 2.5, Y: 5}, {X: 17.5, Y: 5}}, {}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint8(255), alphaAt(m, 5, 10))
	assert.Equal(t, uint8(255), alphaAt(m, 35, 10))
	assert.Equal(t, uint8(0), alphaAt(m, 20, 10), "gap between dabs stays clear")

	_, err = Render(src, Session{DisplayWidth: -1, DisplayHeight: 5})
	assert.ErrorIs(t, err, ErrInvalidDisplaySize)
}
