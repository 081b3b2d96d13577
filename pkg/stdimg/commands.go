// Package stdimg: authoritative registry of engine commands.
//
// This file mirrors the commands implemented in ApplyCommand in
// pkg/stdimg/engine.go. Keep this list up-to-date when you add or
// modify commands so callers (CLI, docs, help text) can read a single
// source of truth.

package stdimg

// ArgSpec describes a single argument for a command. Fields are textual
// and intended for help/validation UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "bool", "string", "enum"
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
}

// Commands is the authoritative list of commands implemented by the engine,
// in the order Pipeline.Apply runs them. edges is standalone.
var Commands = []CommandSpec{
	{
		Name: "brightness",
		Args: []ArgSpec{
			{"percent", "float", true, "", "100 leaves the image unchanged"},
			{"strategy", "enum", true, "", "additive (shift toward percent of the mean) or percent (scale channels)"},
		},
		Usage:       "brightness <percent> <additive|percent>",
		Description: "Adjust brightness using the named strategy.",
	},
	{
		Name:        "contrast",
		Args:        []ArgSpec{{"percent", "float", true, "", "contrast amount, 0 leaves the image unchanged"}},
		Usage:       "contrast <percent>",
		Description: "Contrast stretch around mid-grey 128.",
	},
	{
		Name:        "saturation",
		Args:        []ArgSpec{{"percent", "float", true, "", "100 leaves the image unchanged, 0 is grey"}},
		Usage:       "saturation <percent>",
		Description: "Scale colour distance from per-pixel luma.",
	},
	{
		Name:        "hue",
		Args:        []ArgSpec{{"degrees", "float", true, "", "signed rotation"}},
		Usage:       "hue <degrees>",
		Description: "Rotate hue in HSL space.",
	},
	{
		Name:        "blur",
		Args:        []ArgSpec{{"radius", "float", true, "", "gaussian sigma in pixels (0..100)"}},
		Usage:       "blur <radius>",
		Description: "Separable Gaussian blur of the colour channels.",
	},
	{
		Name:        "grayscale",
		Args:        []ArgSpec{},
		Usage:       "grayscale",
		Description: "Set every channel to luma (0.299R+0.587G+0.114B).",
	},
	{
		Name:        "sepia",
		Args:        []ArgSpec{},
		Usage:       "sepia",
		Description: "Classic sepia tone matrix.",
	},
	{
		Name:        "edges",
		Args:        []ArgSpec{},
		Usage:       "edges",
		Description: "Replace the image with its red-channel edge map.",
	},
}

// LookupCommand returns the spec for name.
func LookupCommand(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}
