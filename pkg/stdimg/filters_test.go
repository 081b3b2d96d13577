package stdimg

import (
	"bytes"
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestGrayscaleIdempotent(t *testing.T) {
	b, _ := NewBuffer(3, 2)
	setPixel(b, 0, 0, color.NRGBA{R: 10, G: 200, B: 50, A: 255})
	setPixel(b, 1, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	setPixel(b, 2, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 0})
	setPixel(b, 0, 1, color.NRGBA{R: 77, G: 77, B: 200, A: 255})

	settings := EditSettings{KeyGrayscale: "true"}
	once, err := Pipeline{}.Apply(b.Clone(), settings)
	if err != nil {
		t.Fatalf("grayscale: %v", err)
	}
	twice, _ := Pipeline{}.Apply(once.Clone(), settings)
	if !bytes.Equal(once.Pix, twice.Pix) {
		t.Fatalf("grayscale not idempotent:\n%v\n%v", once.Pix, twice.Pix)
	}
	if got := pixelAt(once, 0, 0); got != (color.NRGBA{R: 126, G: 126, B: 126, A: 255}) {
		t.Fatalf("luma pixel = %v", got)
	}
	if got := pixelAt(once, 1, 0); got.A != 128 {
		t.Fatalf("alpha changed: %v", got)
	}
}

func TestContrastZeroIsIdentity(t *testing.T) {
	b, _ := NewBuffer(256, 1)
	for x := 0; x < 256; x++ {
		setPixel(b, x, 0, color.NRGBA{R: uint8(x), G: uint8(255 - x), B: uint8(x / 2), A: 255})
	}
	orig := b.Clone()
	if _, err := (Pipeline{}).Apply(b, EditSettings{KeyContrast: "0"}); err != nil {
		t.Fatalf("contrast: %v", err)
	}
	if !bytes.Equal(orig.Pix, b.Pix) {
		t.Fatalf("contrast 0 changed pixels")
	}
}

func TestContrastKeepsMidGrey(t *testing.T) {
	for _, pct := range []string{"50", "110", "120", "300"} {
		b := makeSolid(2, 2, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		if _, err := (Pipeline{}).Apply(b, EditSettings{KeyContrast: pct}); err != nil {
			t.Fatalf("contrast %s: %v", pct, err)
		}
		if got := pixelAt(b, 1, 1); got.R != 128 || got.G != 128 || got.B != 128 {
			t.Fatalf("contrast %s moved mid-grey to %v", pct, got)
		}
	}
}

func TestContrastFactor(t *testing.T) {
	if f := contrastFactor(0); f != 1 {
		t.Fatalf("factor(0) = %v", f)
	}
	// 0.5 -> 259*382.5 / (255*131.5)
	want := 259 * 382.5 / (255 * 131.5)
	if f := contrastFactor(50); math.Abs(f-want) > 1e-12 {
		t.Fatalf("factor(50) = %v, want %v", f, want)
	}
}

func TestBrightnessStrategies(t *testing.T) {
	b, _ := NewBuffer(2, 1)
	setPixel(b, 0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	setPixel(b, 1, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	add, err := Pipeline{Brightness: AdditiveBrightness}.Apply(b.Clone(), EditSettings{KeyBrightness: "150"})
	if err != nil {
		t.Fatalf("additive: %v", err)
	}
	// mean 100, target 150: shift by +50
	if pixelAt(add, 0, 0).R != 50 || pixelAt(add, 1, 0).R != 250 {
		t.Fatalf("additive = %v", add.Pix)
	}

	pct, err := Pipeline{Brightness: PercentBrightness}.Apply(b.Clone(), EditSettings{KeyBrightness: "50"})
	if err != nil {
		t.Fatalf("percent: %v", err)
	}
	if pixelAt(pct, 0, 0).R != 0 || pixelAt(pct, 1, 0).R != 100 {
		t.Fatalf("percent = %v", pct.Pix)
	}

	clamped, _ := Pipeline{Brightness: PercentBrightness}.Apply(b.Clone(), EditSettings{KeyBrightness: "200"})
	if pixelAt(clamped, 1, 0).R != 255 {
		t.Fatalf("percent did not clamp: %v", clamped.Pix)
	}
}

func TestBrightnessWithoutStrategy(t *testing.T) {
	b := makeSolid(1, 1, color.NRGBA{R: 9, A: 255})
	if _, err := (Pipeline{}).Apply(b, EditSettings{KeyBrightness: "110", KeySepia: "true"}); !errors.Is(err, ErrNoBrightnessStrategy) {
		t.Fatalf("got %v, want ErrNoBrightnessStrategy", err)
	}
	if pixelAt(b, 0, 0).R != 9 {
		t.Fatalf("failed apply touched the buffer")
	}
}

func TestSaturation(t *testing.T) {
	b := makeSolid(1, 1, color.NRGBA{R: 255, A: 255})
	if _, err := (Pipeline{}).Apply(b, EditSettings{KeySaturation: "0"}); err != nil {
		t.Fatalf("saturation: %v", err)
	}
	// luma of pure red is 76.245
	if got := pixelAt(b, 0, 0); got != (color.NRGBA{R: 76, G: 76, B: 76, A: 255}) {
		t.Fatalf("desaturated red = %v", got)
	}

	c := makeSolid(1, 1, color.NRGBA{R: 40, G: 120, B: 220, A: 255})
	orig := c.Clone()
	_, _ = Pipeline{}.Apply(c, EditSettings{KeySaturation: "100"})
	if !bytes.Equal(orig.Pix, c.Pix) {
		t.Fatalf("saturation 100 changed %v to %v", orig.Pix, c.Pix)
	}
}

func TestHueRotation(t *testing.T) {
	b := makeSolid(1, 1, color.NRGBA{R: 255, A: 200})
	if _, err := (Pipeline{}).Apply(b, EditSettings{KeyHue: "120"}); err != nil {
		t.Fatalf("hue: %v", err)
	}
	if got := pixelAt(b, 0, 0); got != (color.NRGBA{G: 255, A: 200}) {
		t.Fatalf("red rotated 120 = %v, want green", got)
	}

	c := makeSolid(1, 1, color.NRGBA{R: 30, G: 140, B: 90, A: 255})
	orig := c.Clone()
	_, _ = Pipeline{}.Apply(c, EditSettings{KeyHue: "360"})
	if !bytes.Equal(orig.Pix, c.Pix) {
		t.Fatalf("full turn changed pixel")
	}

	grey := makeSolid(1, 1, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	_, _ = Pipeline{}.Apply(grey, EditSettings{KeyHue: "45"})
	if got := pixelAt(grey, 0, 0); got.R != 90 || got.G != 90 || got.B != 90 {
		t.Fatalf("achromatic pixel changed: %v", got)
	}
}

func TestBlur(t *testing.T) {
	uniform := makeSolid(7, 5, color.NRGBA{R: 60, G: 70, B: 80, A: 255})
	orig := uniform.Clone()
	if _, err := (Pipeline{}).Apply(uniform, EditSettings{KeyBlur: "2"}); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if !bytes.Equal(orig.Pix, uniform.Pix) {
		t.Fatalf("blur changed a uniform buffer")
	}

	dot := makeSolid(9, 9, color.NRGBA{A: 255})
	setPixel(dot, 4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 10})
	if _, err := (Pipeline{}).Apply(dot, EditSettings{KeyBlur: "1"}); err != nil {
		t.Fatalf("blur: %v", err)
	}
	centre := pixelAt(dot, 4, 4)
	if centre.R == 0 || centre.R == 255 {
		t.Fatalf("centre not spread: %v", centre)
	}
	if centre.A != 10 {
		t.Fatalf("blur changed alpha: %v", centre)
	}
	if pixelAt(dot, 3, 4) != pixelAt(dot, 5, 4) || pixelAt(dot, 4, 3) != pixelAt(dot, 4, 5) {
		t.Fatalf("blur not symmetric")
	}
	if pixelAt(dot, 3, 4).R == 0 {
		t.Fatalf("neighbour untouched")
	}
}

func TestSepia(t *testing.T) {
	b, _ := NewBuffer(2, 1)
	setPixel(b, 0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 77})
	setPixel(b, 1, 0, color.NRGBA{A: 255})
	if _, err := (Pipeline{}).Apply(b, EditSettings{KeySepia: "true"}); err != nil {
		t.Fatalf("sepia: %v", err)
	}
	if got := pixelAt(b, 0, 0); got != (color.NRGBA{R: 255, G: 255, B: 239, A: 77}) {
		t.Fatalf("sepia white = %v", got)
	}
	if got := pixelAt(b, 1, 0); got != (color.NRGBA{A: 255}) {
		t.Fatalf("sepia black = %v", got)
	}
}

func TestPlanOrderAndValidation(t *testing.T) {
	p := Pipeline{Brightness: PercentBrightness}
	plan, err := p.Plan(EditSettings{
		KeySepia:      "true",
		KeyBlur:       "1",
		KeyHue:        "-10",
		KeySaturation: "80",
		KeyContrast:   "120",
		KeyBrightness: "110",
		KeyGrayscale:  "false",
		KeySharpness:  "1.1",
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	var names []string
	for _, c := range plan {
		names = append(names, c.Name)
	}
	want := []string{"brightness", "contrast", "saturation", "hue", "blur", "sepia"}
	if len(names) != len(want) {
		t.Fatalf("plan = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("plan = %v, want %v", names, want)
		}
	}
	if plan[0].String() != "brightness 110 percent" {
		t.Fatalf("brightness command = %q", plan[0].String())
	}

	bad := []EditSettings{
		{KeyBlur: "-1"},
		{KeyBlur: "1000"},
		{KeyContrast: "NaN"},
		{KeySaturation: "lots"},
		{KeySepia: "maybe"},
		{KeySharpness: "sharp"},
	}
	for _, s := range bad {
		if _, err := p.Plan(s); !errors.Is(err, ErrInvalidSetting) {
			t.Fatalf("Plan(%v) = %v, want ErrInvalidSetting", s, err)
		}
	}
}

func TestApplyEmptySettingsIsIdentity(t *testing.T) {
	b := makeSolid(3, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	orig := b.Clone()
	out, err := Pipeline{}.Apply(b, EditSettings{KeySharpness: "1.1"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != b {
		t.Fatalf("Apply should return the same buffer")
	}
	if !bytes.Equal(orig.Pix, b.Pix) {
		t.Fatalf("sharpness must not change pixels")
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	b, _ := NewBuffer(50, 130)
	for i := range b.Pix {
		b.Pix[i] = uint8(i * 31 % 251)
	}
	settings := EditSettings{KeyBrightness: "105", KeyContrast: "30", KeySaturation: "140", KeyHue: "25", KeyBlur: "1.5", KeySepia: "true"}
	serial, err := Pipeline{Brightness: AdditiveBrightness, Workers: 1}.Apply(b.Clone(), settings)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := Pipeline{Brightness: AdditiveBrightness, Workers: 8}.Apply(b.Clone(), settings)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !bytes.Equal(serial.Pix, parallel.Pix) {
		t.Fatalf("parallel result differs from serial")
	}
}
