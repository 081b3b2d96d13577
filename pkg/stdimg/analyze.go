package stdimg

import "sort"

// DominantColorCount is the number of colours reported in a Summary.
const DominantColorCount = 5

// ColorStat is one of the most frequent exact RGB triples in a buffer.
type ColorStat struct {
	R     uint8 `json:"r"`
	G     uint8 `json:"g"`
	B     uint8 `json:"b"`
	Count int   `json:"count"`
}

// Summary holds aggregate statistics of a buffer. It keeps no reference to the source.
type Summary struct {
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	TotalPixels    uint64      `json:"totalPixels"`
	DominantColors []ColorStat `json:"dominantColors"`
	// Brightness is the mean of (R+G+B)/3 over all pixels, in [0,255].
	Brightness float64 `json:"brightness"`
	// Contrast is max-min of the per-pixel (R+G+B)/3 values, in [0,255].
	Contrast float64 `json:"contrast"`
}

// Analyze computes brightness, contrast and dominant colours in one pass.
// A zero-area buffer yields TotalPixels=0, Brightness=0 and Contrast=0.
func Analyze(buf *Buffer) (Summary, error) {
	if err := buf.Validate(); err != nil {
		return Summary{}, err
	}
	s := Summary{
		Width:          buf.Width,
		Height:         buf.Height,
		TotalPixels:    uint64(buf.Width) * uint64(buf.Height),
		DominantColors: []ColorStat{},
	}
	if s.TotalPixels == 0 {
		return s, nil
	}

	type bucket struct {
		key   uint32
		count int
	}
	index := make(map[uint32]int)
	var buckets []bucket

	total := 0.0
	lo, hi := 255.0, 0.0
	p := buf.Pix
	for i := 0; i < len(p); i += 4 {
		r, g, b := p[i], p[i+1], p[i+2]
		v := (float64(r) + float64(g) + float64(b)) / 3
		total += v
		lo = min(lo, v)
		hi = max(hi, v)

		key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		if j, ok := index[key]; ok {
			buckets[j].count++
		} else {
			index[key] = len(buckets)
			buckets = append(buckets, bucket{key: key, count: 1})
		}
	}
	s.Brightness = total / float64(s.TotalPixels)
	s.Contrast = hi - lo

	// buckets are in first-seen order, so a stable sort breaks ties by scan order
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].count > buckets[j].count })
	n := min(DominantColorCount, len(buckets))
	for _, bk := range buckets[:n] {
		s.DominantColors = append(s.DominantColors, ColorStat{
			R:     uint8(bk.key >> 16),
			G:     uint8(bk.key >> 8),
			B:     uint8(bk.key),
			Count: bk.count,
		})
	}
	return s, nil
}

// MeanBrightness returns the mean of (R+G+B)/3, or 0 for an empty buffer.
func MeanBrightness(buf *Buffer) float64 {
	if buf.Empty() {
		return 0
	}
	total := 0.0
	p := buf.Pix
	for i := 0; i+3 < len(p); i += 4 {
		total += (float64(p[i]) + float64(p[i+1]) + float64(p[i+2])) / 3
	}
	return total / float64(buf.Width*buf.Height)
}
