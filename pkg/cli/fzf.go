package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// errNoSelection is returned when fzf exits without a choice.
var errNoSelection = errors.New("cli: nothing selected")

// commandLines formats commands as "name: description" fzf rows.
func commandLines(commands []stdimg.CommandSpec) string {
	return strings.Join(lo.Map(commands, func(c stdimg.CommandSpec, _ int) string {
		return c.Name + ": " + c.Description
	}), "\n")
}

// SelectCommandWithFzf lists commands in fzf and returns the chosen name.
func SelectCommandWithFzf(commands []stdimg.CommandSpec) (string, error) {
	cmd := exec.Command("fzf", "--prompt=Command> ")
	cmd.Stdin = strings.NewReader(commandLines(commands))
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}
	name, _, _ := strings.Cut(strings.TrimSpace(out.String()), ":")
	if name = strings.TrimSpace(name); name == "" {
		return "", errNoSelection
	}
	return name, nil
}

// previewCommand picks an fzf --preview command for the detected backend.
func previewCommand() string {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	switch DetectBackend() {
	case BackendKitty:
		return `printf "\x1b_Ga=d\x1b\\"; kitty +kitten icat --silent {} 2>/dev/null || ` + chafa
	case BackendInline:
		return "imgcat {} 2>/dev/null || " + chafa
	case BackendSixel:
		return "img2sixel {} 2>/dev/null || " + chafa
	}
	return chafa
}

// SelectFileWithFzf lists image files under startDir in fzf with a preview
// pane. It requires find, bash and fzf on PATH.
func SelectFileWithFzf(startDir string) (string, error) {
	script := fmt.Sprintf(
		"find %s -type f \\( -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.png' -o -iname '*.gif' -o -iname '*.webp' -o -iname '*.bmp' \\) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir), previewCommand(),
	)
	cmd := exec.Command("bash", "-lc", script)
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	clearKittyImages()
	if err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}
	sel := strings.TrimSpace(out.String())
	if sel == "" {
		return "", errNoSelection
	}
	return sel, nil
}
