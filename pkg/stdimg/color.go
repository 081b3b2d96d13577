package stdimg

import (
	"math"
)

// RGB<->HSL conversions operate on 0..1 floats.

func rgbToHsl(r, g, b float64) (h, s, l float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	if max == min {
		// achromatic
		return 0, 0, l
	}
	d := max - min
	if l > 0.5 {
		s = d / (2.0 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	case b:
		h = (r-g)/d + 4
	}
	h /= 6
	return
}

func hueToRgb(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

func hslToRgb(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	r = hueToRgb(p, q, h+1.0/3.0)
	g = hueToRgb(p, q, h)
	b = hueToRgb(p, q, h-1.0/3.0)
	return
}

// saturate scales each channel's distance from the pixel's luma by pct/100.
func saturate(buf *Buffer, pct float64, workers int) {
	f := pct / 100.0
	p := buf.Pix
	rowLen := buf.Width * 4
	parallelRows(buf.Height, workers, func(y0, y1 int) {
		for i := y0 * rowLen; i < y1*rowLen; i += 4 {
			r, g, b := float64(p[i]), float64(p[i+1]), float64(p[i+2])
			l := luma(r, g, b)
			p[i+0] = clampFloatToUint8(l + (r-l)*f)
			p[i+1] = clampFloatToUint8(l + (g-l)*f)
			p[i+2] = clampFloatToUint8(l + (b-l)*f)
		}
	})
}

// rotateHue shifts hue by degrees (signed) in HSL, keeping saturation and lightness.
func rotateHue(buf *Buffer, degrees float64, workers int) {
	shift := math.Mod(degrees/360.0, 1.0)
	if shift == 0 {
		return
	}
	p := buf.Pix
	rowLen := buf.Width * 4
	parallelRows(buf.Height, workers, func(y0, y1 int) {
		for i := y0 * rowLen; i < y1*rowLen; i += 4 {
			h, s, l := rgbToHsl(float64(p[i])/255.0, float64(p[i+1])/255.0, float64(p[i+2])/255.0)
			if s == 0 {
				continue
			}
			h = math.Mod(h+shift, 1.0)
			if h < 0 {
				h += 1
			}
			r, g, b := hslToRgb(h, s, l)
			p[i+0] = clampFloatToUint8(r * 255.0)
			p[i+1] = clampFloatToUint8(g * 255.0)
			p[i+2] = clampFloatToUint8(b * 255.0)
		}
	})
}

// grayscale sets every channel to the pixel's luma.
func grayscale(buf *Buffer, workers int) {
	p := buf.Pix
	rowLen := buf.Width * 4
	parallelRows(buf.Height, workers, func(y0, y1 int) {
		for i := y0 * rowLen; i < y1*rowLen; i += 4 {
			v := clampFloatToUint8(luma(float64(p[i]), float64(p[i+1]), float64(p[i+2])))
			p[i+0] = v
			p[i+1] = v
			p[i+2] = v
		}
	})
}
