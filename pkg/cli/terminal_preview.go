package cli

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Fepozopo/pixedit/pkg/editor"
	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// Terminal previews use the kitty graphics protocol, the iTerm2 OSC 1337
// inline protocol, img2sixel, or chafa, in that order of preference.
// PREVIEW_BACKEND=kitty|inline|sixel|chafa forces one backend.

// ErrNoPreview is returned when no preview backend is available.
var ErrNoPreview = errors.New("cli: no terminal preview backend available")

// Character cell assumptions used to size previews.
const (
	cellW   = 8
	cellH   = 16
	maxCols = 80
	maxRows = 40
	minCols = 6
	minRows = 3
)

// Backend names a preview transport.
type Backend string

const (
	BackendNone   Backend = ""
	BackendKitty  Backend = "kitty"
	BackendInline Backend = "inline"
	BackendSixel  Backend = "sixel"
	BackendChafa  Backend = "chafa"
)

// PreviewSize is a placement in terminal cells.
type PreviewSize struct {
	Cols, Rows int
}

// Pixels returns the approximate pixel size of the placement.
func (s PreviewSize) Pixels() (int, int) { return s.Cols * cellW, s.Rows * cellH }

// computePreviewSize fits w x h into at most maxCols x maxRows cells without
// scaling up.
func computePreviewSize(w, h int) PreviewSize {
	if w <= 0 || h <= 0 {
		return PreviewSize{Cols: minCols, Rows: minRows}
	}
	scale := min(1.0, float64(maxCols*cellW)/float64(w), float64(maxRows*cellH)/float64(h))
	cols := int(float64(w)*scale/cellW + 0.5)
	rows := int(float64(h)*scale/cellH + 0.5)
	return PreviewSize{
		Cols: min(maxCols, max(minCols, cols)),
		Rows: min(maxRows, max(minRows, rows)),
	}
}

// DetectBackend picks a backend from the environment.
func DetectBackend() Backend {
	switch b := Backend(strings.ToLower(os.Getenv("PREVIEW_BACKEND"))); b {
	case BackendKitty, BackendInline, BackendSixel, BackendChafa:
		return b
	}
	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "", strings.Contains(term, "kitty"), strings.Contains(term, "ghostty"):
		return BackendKitty
	case isInlineTerminal(os.Getenv("TERM_PROGRAM")), os.Getenv("ITERM_SESSION_ID") != "", strings.Contains(term, "wezterm"):
		return BackendInline
	case os.Getenv("SIXEL_PREVIEW") == "1", strings.Contains(term, "foot"), os.Getenv("WT_SESSION") != "":
		return BackendSixel
	}
	if _, err := exec.LookPath("chafa"); err == nil {
		return BackendChafa
	}
	return BackendNone
}

func isInlineTerminal(program string) bool {
	switch program {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return true
	}
	return false
}

// PreviewImage renders buf to stdout using the detected backend.
func PreviewImage(buf *stdimg.Buffer) error {
	return RenderPreview(os.Stdout, DetectBackend(), buf)
}

// RenderPreview renders buf to w using backend. The image is downscaled to
// the placement before encoding.
func RenderPreview(w io.Writer, backend Backend, buf *stdimg.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if backend == BackendNone {
		return ErrNoPreview
	}
	size := computePreviewSize(buf.Width, buf.Height)
	pw, ph := size.Pixels()
	small, err := editor.Preview(buf, max(pw, ph))
	if err != nil {
		return err
	}
	data, err := editor.EncodePNG(small)
	if err != nil {
		return err
	}
	switch backend {
	case BackendKitty:
		err = writeKitty(w, data, size)
	case BackendInline:
		err = writeInline(w, data, size)
	case BackendSixel:
		err = runRenderer(w, data, "img2sixel", "-")
	case BackendChafa:
		err = runRenderer(w, data, "chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	default:
		return fmt.Errorf("%w: %q", ErrNoPreview, backend)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// writeKitty sends PNG data in 4096-byte base64 chunks. Only the first chunk
// carries the control keys.
func writeKitty(w io.Writer, data []byte, size PreviewSize) error {
	const chunk = 4096
	enc := base64.StdEncoding.EncodeToString(data)
	for pos := 0; pos < len(enc); pos += chunk {
		end := min(pos+chunk, len(enc))
		more := 0
		if end < len(enc) {
			more = 1
		}
		var err error
		if pos == 0 {
			_, err = fmt.Fprintf(w, "\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%d;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			_, err = fmt.Fprintf(w, "\x1b_Gm=%d;%s\x1b\\", more, enc[pos:end])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeInline(w io.Writer, data []byte, size PreviewSize) error {
	pw, ph := size.Pixels()
	_, err := fmt.Fprintf(w, "\x1b]1337;File=name=preview.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a",
		len(data), pw, ph, base64.StdEncoding.EncodeToString(data))
	return err
}

func runRenderer(w io.Writer, data []byte, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s not found", ErrNoPreview, name)
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// clearKittyImages deletes kitty graphics left by fzf previews. Other
// terminals ignore the sequence.
func clearKittyImages() {
	fmt.Fprint(os.Stdout, "\x1b_Ga=d\x1b\\")
}
