package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/pixedit/pkg/editor"
	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// Prompter reads whole lines from one buffered reader so no input is lost
// between prompts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fzf is replaced in tests.
	fzf func(dir string) (string, error)
}

// NewPrompter reads from r and writes prompts to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w, fzf: SelectFileWithFzf}
}

// Line prints prompt and returns the next trimmed line. A final line
// without a newline is returned with a nil error.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PathLine is Line for file paths: a lone "/" opens the fzf file picker and
// falls back to a typed path when fzf is unavailable.
func (p *Prompter) PathLine(prompt string) (string, error) {
	input, err := p.Line(prompt)
	if err != nil || input != "/" {
		return input, err
	}
	if sel, err := p.fzf("."); err == nil && sel != "" {
		fmt.Fprintf(p.out, " [fzf] %s\n", sel)
		return sel, nil
	}
	return p.Line(prompt)
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (p *Prompter) Confirm(prompt string) bool {
	answer, err := p.Line(prompt)
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// LoadImage reads and decodes path under lim.
func LoadImage(path string, lim editor.Limits) (*stdimg.Buffer, editor.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, editor.FormatUnknown, err
	}
	return editor.Decode(data, lim)
}

// ErrNotPNG is returned when an output path names a format other than PNG.
var ErrNotPNG = errors.New("cli: output is written as PNG only")

// SaveImage encodes buf as PNG. A path without an extension gets ".png";
// the written path is returned.
func SaveImage(path string, buf *stdimg.Buffer) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
	case "":
		path += ".png"
	default:
		return "", fmt.Errorf("%w: %s", ErrNotPNG, path)
	}
	data, err := editor.EncodePNG(buf)
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ImageInfo is a one-line description of buf.
func ImageInfo(buf *stdimg.Buffer, f editor.Format) string {
	if buf == nil {
		return "no image"
	}
	name := strings.ToUpper(string(f))
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("Format: %s, Width: %d, Height: %d", name, buf.Width, buf.Height)
}
