package stdimg

import (
	"math"
)

// brightenAdditive shifts every channel by target-mean where target = mean*pct/100.
func brightenAdditive(buf *Buffer, pct float64, workers int) {
	mean := MeanBrightness(buf)
	delta := mean*pct/100.0 - mean
	if delta == 0 {
		return
	}
	mapRGB(buf, workers, func(v float64) float64 { return v + delta })
}

// brightenPercent scales every channel by pct/100.
func brightenPercent(buf *Buffer, pct float64, workers int) {
	f := pct / 100.0
	mapRGB(buf, workers, func(v float64) float64 { return v * f })
}

// contrastFactor returns the stretch factor for c = pct/100, or +Inf at the pole 255c = 259.
func contrastFactor(pct float64) float64 {
	c := pct / 100.0
	den := 255 * (259 - c*255)
	if den == 0 {
		return math.Inf(1)
	}
	return (259 * (c*255 + 255)) / den
}

// adjustContrast applies v' = factor*(v-128)+128 to RGB.
func adjustContrast(buf *Buffer, pct float64, workers int) {
	factor := contrastFactor(pct)
	if math.IsInf(factor, 1) {
		mapRGB(buf, workers, func(v float64) float64 {
			switch {
			case v > 128:
				return 255
			case v < 128:
				return 0
			}
			return v
		})
		return
	}
	mapRGB(buf, workers, func(v float64) float64 { return factor*(v-128) + 128 })
}

// mapRGB applies fn to each colour channel through a 256-entry lookup table.
func mapRGB(buf *Buffer, workers int, fn func(v float64) float64) {
	var lut [256]uint8
	for i := range lut {
		lut[i] = clampFloatToUint8(fn(float64(i)))
	}
	p := buf.Pix
	rowLen := buf.Width * 4
	parallelRows(buf.Height, workers, func(y0, y1 int) {
		for i := y0 * rowLen; i < y1*rowLen; i += 4 {
			p[i+0] = lut[p[i+0]]
			p[i+1] = lut[p[i+1]]
			p[i+2] = lut[p[i+2]]
		}
	})
}
