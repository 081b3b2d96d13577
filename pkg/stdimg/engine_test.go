package stdimg

import (
	"errors"
	"image/color"
	"testing"
)

func TestApplyCommandRegistry(t *testing.T) {
	// every registered command must be accepted by ApplyCommand with sample args
	sample := map[string][]string{
		"brightness": {"120", "additive"},
		"contrast":   {"20"},
		"saturation": {"50"},
		"hue":        {"-30"},
		"blur":       {"1"},
		"grayscale":  nil,
		"sepia":      nil,
		"edges":      nil,
	}
	for _, spec := range Commands {
		args, ok := sample[spec.Name]
		if !ok {
			t.Fatalf("no sample args for registered command %q", spec.Name)
		}
		b := makeSolid(4, 4, color.NRGBA{R: 100, G: 150, B: 200, A: 255})
		out, err := ApplyCommand(b, spec.Name, args)
		if err != nil {
			t.Fatalf("%s: %v", spec.Name, err)
		}
		if out != b || out.Width != 4 || out.Height != 4 {
			t.Fatalf("%s: changed buffer identity or size", spec.Name)
		}
		if _, ok := LookupCommand(spec.Name); !ok {
			t.Fatalf("LookupCommand(%q) failed", spec.Name)
		}
	}
	if len(sample) != len(Commands) {
		t.Fatalf("sample table out of sync with Commands")
	}
}

func TestApplyCommandErrors(t *testing.T) {
	b := makeSolid(2, 2, color.NRGBA{A: 255})
	if _, err := ApplyCommand(b, "resize", []string{"1", "1"}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("unknown: got %v", err)
	}
	if _, err := ApplyCommand(b, "brightness", []string{"110", "sideways"}); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("bad strategy: got %v", err)
	}
	if _, err := ApplyCommand(b, "brightness", []string{"110"}); err == nil {
		t.Fatalf("brightness without strategy should fail")
	}
	if _, err := ApplyCommand(b, "blur", []string{"-2"}); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("negative blur: got %v", err)
	}
	if _, err := ApplyCommand(nil, "sepia", nil); !errors.Is(err, ErrUninitializedBuffer) {
		t.Fatalf("nil buffer: got %v", err)
	}
}

func TestApplyCommandEdgesUniform(t *testing.T) {
	b := makeSolid(5, 5, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	if _, err := ApplyCommand(b, "edges", nil); err != nil {
		t.Fatalf("edges: %v", err)
	}
	for _, v := range b.Pix {
		if v != 0 {
			t.Fatalf("uniform edges should be fully transparent")
		}
	}
}

func TestParseBrightnessStrategy(t *testing.T) {
	for _, s := range []BrightnessStrategy{AdditiveBrightness, PercentBrightness} {
		got, err := ParseBrightnessStrategy(s.String())
		if err != nil || got != s {
			t.Fatalf("round trip %v: %v %v", s, got, err)
		}
	}
	if _, err := ParseBrightnessStrategy("unset"); err == nil {
		t.Fatalf("unset should not parse")
	}
}
