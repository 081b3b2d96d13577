package stdimg

// EdgeThreshold is the red-channel difference above which a pixel counts as an edge.
const EdgeThreshold = 30

// DetectEdges marks interior pixels whose red channel differs from its top-left,
// top and left neighbours by more than EdgeThreshold in total. Edge pixels are
// opaque white; everything else, including the one-pixel border, is transparent.
//
// Only the red channel is inspected. This is not a gradient magnitude and is kept
// this way so edge maps stay comparable with earlier output.
func DetectEdges(src *Buffer) (*Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	out, _ := NewBuffer(src.Width, src.Height)
	w, h := src.Width, src.Height
	p := src.Pix
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := src.offset(x, y)
			r := int(p[i])
			diff := absInt(r-int(p[src.offset(x-1, y-1)])) +
				absInt(r-int(p[src.offset(x, y-1)])) +
				absInt(r-int(p[src.offset(x-1, y)]))
			if diff > EdgeThreshold {
				out.Pix[i+0] = 255
				out.Pix[i+1] = 255
				out.Pix[i+2] = 255
				out.Pix[i+3] = 255
			}
		}
	}
	return out, nil
}

// EdgeDensity returns the fraction of opaque pixels in an edge map.
func EdgeDensity(edges *Buffer) float64 {
	if edges.Empty() {
		return 0
	}
	n := 0
	for i := 3; i < len(edges.Pix); i += 4 {
		if edges.Pix[i] != 0 {
			n++
		}
	}
	return float64(n) / float64(edges.Width*edges.Height)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
