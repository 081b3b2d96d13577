package stdimg

// MaskThreshold is the per-channel value a pixel must exceed in R, G and B
// to count as selected in a mask. Anti-aliased fringes below it are excluded.
const MaskThreshold = 200

// IsMaskPixel reports whether an RGBA value counts as "edit here".
func IsMaskPixel(r, g, b, a uint8) bool {
	return r > MaskThreshold && g > MaskThreshold && b > MaskThreshold && a > 0
}

// CompositeMasked copies src pixels into dst wherever mask is selected.
// All three buffers must share dimensions. dst is modified in place.
func CompositeMasked(dst, src, mask *Buffer) error {
	for _, b := range []*Buffer{dst, src, mask} {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	if err := SameSize(dst, src); err != nil {
		return err
	}
	if err := SameSize(dst, mask); err != nil {
		return err
	}
	m := mask.Pix
	for i := 0; i+3 < len(m); i += 4 {
		if IsMaskPixel(m[i], m[i+1], m[i+2], m[i+3]) {
			copy(dst.Pix[i:i+4], src.Pix[i:i+4])
		}
	}
	return nil
}

// Binarize writes a fresh mask from src: selected pixels become opaque white,
// everything else fully transparent.
func Binarize(src *Buffer) (*Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	out, _ := NewBuffer(src.Width, src.Height)
	p := src.Pix
	for i := 0; i+3 < len(p); i += 4 {
		if IsMaskPixel(p[i], p[i+1], p[i+2], p[i+3]) {
			out.Pix[i+0] = 255
			out.Pix[i+1] = 255
			out.Pix[i+2] = 255
			out.Pix[i+3] = 255
		}
	}
	return out, nil
}
