package editor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/samber/lo"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

var (
	// ErrUnsupportedFormat is returned for unknown or disallowed encodings.
	ErrUnsupportedFormat = errors.New("editor: unsupported image format")
	// ErrTooLarge is returned when a file or its dimensions exceed Limits.
	ErrTooLarge = errors.New("editor: image too large")
)

// Format is a recognised image encoding.
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
)

// MIME returns the content type for f.
func (f Format) MIME() string {
	if f == FormatUnknown {
		return "application/octet-stream"
	}
	return "image/" + string(f)
}

var signatures = []struct {
	format Format
	magic  []byte
}{
	{FormatJPEG, []byte{0xFF, 0xD8}},
	{FormatPNG, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{FormatGIF, []byte("GIF8")},
	{FormatWebP, []byte("RIFF")}, // plus "WEBP" at offset 8
	{FormatBMP, []byte("BM")},
}

// Sniff identifies data by its magic bytes.
func Sniff(data []byte) Format {
	for _, s := range signatures {
		if !bytes.HasPrefix(data, s.magic) {
			continue
		}
		if s.format == FormatWebP && (len(data) < 12 || string(data[8:12]) != "WEBP") {
			continue
		}
		return s.format
	}
	return FormatUnknown
}

// Limits bound what Decode accepts.
type Limits struct {
	MaxFileSize    int64
	MaxWidth       int
	MaxHeight      int
	MaxPixels      int64
	AllowedFormats []Format
}

// DefaultLimits accepts up to 5 MiB of JPEG, PNG, GIF or WebP, 8192 px per
// side and 40 megapixels.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:    5 << 20,
		MaxWidth:       8192,
		MaxHeight:      8192,
		MaxPixels:      40_000_000,
		AllowedFormats: []Format{FormatJPEG, FormatPNG, FormatGIF, FormatWebP},
	}
}

// ParseFormats converts names such as "jpg" or "PNG" into Formats.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "jpeg", "jpg":
			out = append(out, FormatJPEG)
		case "png":
			out = append(out, FormatPNG)
		case "gif":
			out = append(out, FormatGIF)
		case "webp":
			out = append(out, FormatWebP)
		case "bmp":
			out = append(out, FormatBMP)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, n)
		}
	}
	return lo.Uniq(out), nil
}

// Decode validates data against lim and decodes it into a Buffer. The size
// check happens on the header before any pixels are allocated. JPEGs are
// turned upright according to their EXIF orientation.
func Decode(data []byte, lim Limits) (*stdimg.Buffer, Format, error) {
	if lim.MaxFileSize > 0 && int64(len(data)) > lim.MaxFileSize {
		return nil, FormatUnknown, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), lim.MaxFileSize)
	}
	f := Sniff(data)
	if f == FormatUnknown {
		return nil, f, ErrUnsupportedFormat
	}
	if len(lim.AllowedFormats) > 0 && !lo.Contains(lim.AllowedFormats, f) {
		return nil, f, fmt.Errorf("%w: %s not allowed", ErrUnsupportedFormat, f)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, f, fmt.Errorf("decode %s header: %w", f, err)
	}
	if (lim.MaxWidth > 0 && cfg.Width > lim.MaxWidth) ||
		(lim.MaxHeight > 0 && cfg.Height > lim.MaxHeight) ||
		(lim.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > lim.MaxPixels) {
		return nil, f, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, f, fmt.Errorf("decode %s: %w", f, err)
	}
	buf, err := stdimg.FromImage(img)
	if err != nil {
		return nil, f, err
	}
	if f == FormatJPEG {
		if o, err := jpegOrientation(data); err == nil && o != 1 {
			buf, err = stdimg.Orient(buf, o)
			return buf, f, err
		}
	}
	return buf, f, nil
}
