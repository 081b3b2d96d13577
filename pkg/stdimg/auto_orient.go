package stdimg

// Orient returns a copy of buf transformed for an EXIF orientation tag
// (1..8). Orientations 5 to 8 swap width and height. Values outside 2..8
// return an unchanged clone.
func Orient(buf *Buffer, orientation int) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if orientation < 2 || orientation > 8 {
		return buf.Clone(), nil
	}
	w, h := buf.Width, buf.Height
	ow, oh := w, h
	if orientation >= 5 {
		ow, oh = h, w
	}
	out := &Buffer{Width: ow, Height: oh, Pix: make([]uint8, len(buf.Pix))}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // mirror horizontal
				dx, dy = w-1-x, y
			case 3: // rotate 180
				dx, dy = w-1-x, h-1-y
			case 4: // mirror vertical
				dx, dy = x, h-1-y
			case 5: // transpose
				dx, dy = y, x
			case 6: // rotate 90 clockwise
				dx, dy = h-1-y, x
			case 7: // transverse
				dx, dy = h-1-y, w-1-x
			case 8: // rotate 90 counter-clockwise
				dx, dy = y, w-1-x
			}
			s, d := buf.offset(x, y), out.offset(dx, dy)
			copy(out.Pix[d:d+4], buf.Pix[s:s+4])
		}
	}
	return out, nil
}
