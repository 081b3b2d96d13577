package stdimg

// sepiaMatrix is the classic sepia tone matrix, rows produce R', G', B'.
var sepiaMatrix = [3][3]float64{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

// sepia applies sepiaMatrix to every pixel, clamping to 255.
func sepia(buf *Buffer, workers int) {
	p := buf.Pix
	rowLen := buf.Width * 4
	m := &sepiaMatrix
	parallelRows(buf.Height, workers, func(y0, y1 int) {
		for i := y0 * rowLen; i < y1*rowLen; i += 4 {
			r, g, b := float64(p[i]), float64(p[i+1]), float64(p[i+2])
			p[i+0] = clampFloatToUint8(m[0][0]*r + m[0][1]*g + m[0][2]*b)
			p[i+1] = clampFloatToUint8(m[1][0]*r + m[1][1]*g + m[1][2]*b)
			p[i+2] = clampFloatToUint8(m[2][0]*r + m[2][1]*g + m[2][2]*b)
		}
	})
}
