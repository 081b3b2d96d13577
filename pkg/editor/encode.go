package editor

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// EncodePNG writes buf as a lossless PNG.
func EncodePNG(buf *stdimg.Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, buf.NRGBA()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DataURI encodes buf as a base64 PNG data URI.
func DataURI(buf *stdimg.Buffer) (string, error) {
	data, err := EncodePNG(buf)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Preview returns a copy of buf scaled so its longer side is at most maxSide,
// keeping the aspect ratio. Buffers already small enough are cloned unchanged.
func Preview(buf *stdimg.Buffer, maxSide int) (*stdimg.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	w, h := buf.Width, buf.Height
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) || buf.Empty() {
		return buf.Clone(), nil
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), buf.NRGBA(), buf.NRGBA().Bounds(), draw.Src, nil)
	return stdimg.FromImage(dst)
}
