package stdimg

import (
	"math"
)

// gaussianKernel1D generates a normalized 1D Gaussian kernel with given sigma.
// Returns kernel and half-width radius.
func gaussianKernel1D(sigma float64) ([]float64, int) {
	if sigma <= 0 {
		return []float64{1.0}, 0
	}
	radius := int(math.Ceil(3 * sigma))
	kern := make([]float64, radius*2+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * (float64(i) * float64(i)) / (sigma * sigma))
		kern[i+radius] = v
		sum += v
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern, radius
}

// gaussianBlur blurs RGB in place with a separable Gaussian of the given sigma.
// Samples past the border are clamped to the edge. Alpha is untouched.
func gaussianBlur(buf *Buffer, sigma float64, workers int) {
	kern, radius := gaussianKernel1D(sigma)
	if radius == 0 || buf.Empty() {
		return
	}
	w, h := buf.Width, buf.Height
	src := buf.Pix
	// intermediate keeps full precision between the passes
	tmp := make([]float64, w*h*3)

	parallelRows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var sr, sg, sb float64
				for k := -radius; k <= radius; k++ {
					i := (y*w + clampInt(x+k, 0, w-1)) * 4
					wgt := kern[k+radius]
					sr += float64(src[i+0]) * wgt
					sg += float64(src[i+1]) * wgt
					sb += float64(src[i+2]) * wgt
				}
				t := (y*w + x) * 3
				tmp[t+0], tmp[t+1], tmp[t+2] = sr, sg, sb
			}
		}
	})

	parallelRows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var sr, sg, sb float64
				for k := -radius; k <= radius; k++ {
					t := (clampInt(y+k, 0, h-1)*w + x) * 3
					wgt := kern[k+radius]
					sr += tmp[t+0] * wgt
					sg += tmp[t+1] * wgt
					sb += tmp[t+2] * wgt
				}
				i := (y*w + x) * 4
				src[i+0] = clampFloatToUint8(sr)
				src[i+1] = clampFloatToUint8(sg)
				src[i+2] = clampFloatToUint8(sb)
			}
		}
	})
}
