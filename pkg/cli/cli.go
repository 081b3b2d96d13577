// Package cli is the interactive terminal front end.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Fepozopo/pixedit/pkg/editor"
	"github.com/Fepozopo/pixedit/pkg/mask"
	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Commands available:")
	fmt.Fprintln(w, "  /  - select and apply a single command")
	fmt.Fprintln(w, "  e  - edit with a natural-language prompt")
	fmt.Fprintln(w, "  m  - load a mask for prompt edits (empty path clears it)")
	fmt.Fprintln(w, "  a  - analyze the current image")
	fmt.Fprintln(w, "  o  - open another image")
	fmt.Fprintln(w, "  s  - save current image (PNG)")
	fmt.Fprintln(w, "  u  - check for updates")
	fmt.Fprintln(w, "  h  - show this help message")
	fmt.Fprintln(w, "  q  - quit")
}

// REPL holds the state of one interactive session.
type REPL struct {
	ed  *editor.Editor
	p   *Prompter
	out io.Writer

	// Preview renders the image after each change; nil disables it.
	Preview func(*stdimg.Buffer) error
	// SelectCommand picks a command name; errors fall back to a typed choice.
	SelectCommand func([]stdimg.CommandSpec) (string, error)

	cur    *stdimg.Buffer
	format editor.Format
	mask   *stdimg.Buffer
}

// NewREPL builds a session reading commands from in.
func NewREPL(ed *editor.Editor, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		ed:            ed,
		p:             NewPrompter(in, out),
		out:           out,
		Preview:       PreviewImage,
		SelectCommand: SelectCommandWithFzf,
	}
}

// Image returns the current image.
func (r *REPL) Image() *stdimg.Buffer { return r.cur }

// Open loads path as the current image and clears any mask.
func (r *REPL) Open(path string) error {
	buf, f, err := LoadImage(path, r.ed.Limits())
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	r.cur, r.format, r.mask = buf, f, nil
	r.show()
	return nil
}

func (r *REPL) show() {
	if r.Preview != nil {
		_ = r.Preview(r.cur)
	}
	fmt.Fprintln(r.out, ImageInfo(r.cur, r.format))
}

// Run reads one command per line until q or end of input.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Prompt Image Editor")
	usage(r.out)
	for {
		line, err := r.p.Line("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		switch line[0] {
		case '/':
			r.report(r.command())
		case 'e':
			r.report(r.edit(ctx))
		case 'm':
			r.report(r.loadMask())
		case 'a':
			r.report(r.analyze())
		case 'o':
			r.report(r.open())
		case 's':
			r.report(r.save())
		case 'u':
			r.report(CheckForUpdates(ctx, r.p, r.out))
		case 'h':
			usage(r.out)
		case 'q':
			fmt.Fprintln(r.out, "Exiting...")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (r *REPL) report(err error) {
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

var errNoImage = errors.New("no image loaded; press 'o' to open one")

func (r *REPL) command() error {
	if r.cur == nil {
		return errNoImage
	}
	name, err := r.SelectCommand(stdimg.Commands)
	if err != nil || name == "" {
		if name, err = r.typedCommand(); err != nil || name == "" {
			return err
		}
	}
	spec, ok := stdimg.LookupCommand(name)
	if !ok {
		return fmt.Errorf("%w: %s", stdimg.ErrUnknownCommand, name)
	}
	fmt.Fprintln(r.out, "\n"+Tooltip(spec)+"\n")

	raw := make([]string, len(spec.Args))
	for i, a := range spec.Args {
		label := a.Type
		if a.Type == "enum" && a.Description != "" {
			label = "enum: " + a.Description
		}
		if raw[i], err = r.p.Line(fmt.Sprintf("%s (%s): ", a.Name, label)); err != nil {
			return err
		}
	}
	args, err := NormalizeArgs(name, raw)
	if err != nil {
		return fmt.Errorf("input validation error: %w", err)
	}
	out, err := stdimg.ApplyCommand(r.cur.Clone(), name, args)
	if err != nil {
		return err
	}
	r.cur = out
	fmt.Fprintf(r.out, "Applied %s\n", name)
	r.show()
	return nil
}

// typedCommand is the selection list used when fzf is unavailable. It
// accepts a number, a full name or an unambiguous prefix.
func (r *REPL) typedCommand() (string, error) {
	fmt.Fprintln(r.out, "Command selection:")
	for i, c := range stdimg.Commands {
		fmt.Fprintf(r.out, "  %d) %s - %s\n", i+1, c.Name, c.Description)
	}
	sel, err := r.p.Line("Enter number or command name (leave empty to cancel): ")
	if err != nil || sel == "" {
		return "", err
	}
	if idx, err := strconv.Atoi(sel); err == nil {
		if idx < 1 || idx > len(stdimg.Commands) {
			return "", fmt.Errorf("invalid selection %d", idx)
		}
		return stdimg.Commands[idx-1].Name, nil
	}
	sel = strings.ToLower(sel)
	names := lo.Map(stdimg.Commands, func(c stdimg.CommandSpec, _ int) string { return c.Name })
	if lo.Contains(names, sel) {
		return sel, nil
	}
	matches := lo.Filter(names, func(n string, _ int) bool { return strings.HasPrefix(n, sel) })
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", stdimg.ErrUnknownCommand, sel)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("ambiguous selection, candidates: %s", strings.Join(matches, ", "))
}

func (r *REPL) edit(ctx context.Context) error {
	if r.cur == nil {
		return errNoImage
	}
	text, err := r.p.Line("Describe the edit: ")
	if err != nil {
		return err
	}
	var res *editor.Result
	if r.mask != nil {
		res, err = r.ed.EditMasked(ctx, r.cur, r.mask, text)
	} else {
		res, err = r.ed.Edit(ctx, r.cur, text)
	}
	if err != nil {
		return err
	}
	r.cur = res.Image
	if res.Fallback {
		fmt.Fprintln(r.out, "AI analysis unavailable; using keyword matching only.")
	} else {
		fmt.Fprintf(r.out, "AI analysis: %s\n", res.AIAnalysis)
	}
	entries := res.Settings.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No adjustments matched the prompt.")
	}
	for _, e := range entries {
		fmt.Fprintf(r.out, "  %s: %s\n", e.Key, e.Value)
	}
	r.show()
	return nil
}

// loadMask accepts either an image (white marks the edit region) or a
// recorded stroke session in JSON.
func (r *REPL) loadMask() error {
	if r.cur == nil {
		return errNoImage
	}
	path, err := r.p.PathLine("Mask image or strokes .json (empty clears, '/' for fzf): ")
	if err != nil {
		return err
	}
	if path == "" {
		r.mask = nil
		fmt.Fprintln(r.out, "mask cleared")
		return nil
	}
	var m *stdimg.Buffer
	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err := mask.LoadSession(path)
		if err != nil {
			return err
		}
		if m, err = mask.Render(r.cur, s); err != nil {
			return err
		}
	} else {
		if m, _, err = LoadImage(path, r.ed.Limits()); err != nil {
			return err
		}
		if err := stdimg.SameSize(r.cur, m); err != nil {
			return err
		}
	}
	r.mask = m
	fmt.Fprintf(r.out, "mask loaded (%d%% selected)\n", int(maskCoverage(m)*100+0.5))
	return nil
}

func maskCoverage(m *stdimg.Buffer) float64 {
	n := m.Width * m.Height
	if n == 0 {
		return 0
	}
	sel := 0
	for i := 0; i < len(m.Pix); i += 4 {
		if stdimg.IsMaskPixel(m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]) {
			sel++
		}
	}
	return float64(sel) / float64(n)
}

func (r *REPL) analyze() error {
	if r.cur == nil {
		return errNoImage
	}
	a, err := r.ed.Analyze(r.cur)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Size: %dx%d (%d pixels)\n", a.Width, a.Height, a.TotalPixels)
	fmt.Fprintf(r.out, "Brightness: %.1f  Contrast: %.1f  Edge density: %.3f\n", a.Brightness, a.Contrast, a.EdgeDensity)
	for _, c := range a.DominantColors {
		fmt.Fprintf(r.out, "  #%02x%02x%02x  %d\n", c.R, c.G, c.B, c.Count)
	}
	return nil
}

func (r *REPL) open() error {
	path, err := r.p.PathLine("Path to image (empty cancels, '/' for fzf): ")
	if err != nil || path == "" {
		return err
	}
	if err := r.Open(path); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Opened %s\n", path)
	return nil
}

func (r *REPL) save() error {
	if r.cur == nil {
		return errNoImage
	}
	path, err := r.p.Line("Enter output filename: ")
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("no filename provided")
	}
	path, err = SaveImage(path, r.cur)
	if err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Fprintf(r.out, "Saved to %s\n", path)
	return nil
}
