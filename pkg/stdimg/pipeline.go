package stdimg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrNoBrightnessStrategy is returned when settings carry a brightness value
// but the Pipeline was not told how to interpret it.
var ErrNoBrightnessStrategy = errors.New("stdimg: no brightness strategy selected")

// MaxBlurRadius bounds the blur setting; larger kernels are rejected as invalid.
const MaxBlurRadius = 100

// BrightnessStrategy selects how a brightness percentage is applied.
type BrightnessStrategy int

const (
	// BrightnessUnset makes any brightness setting an error.
	BrightnessUnset BrightnessStrategy = iota
	// AdditiveBrightness shifts channels by the difference between the
	// requested and the measured mean brightness.
	AdditiveBrightness
	// PercentBrightness scales channels linearly by percent/100.
	PercentBrightness
)

func (s BrightnessStrategy) String() string {
	switch s {
	case AdditiveBrightness:
		return "additive"
	case PercentBrightness:
		return "percent"
	}
	return "unset"
}

// ParseBrightnessStrategy maps "additive" or "percent" to a strategy.
func ParseBrightnessStrategy(s string) (BrightnessStrategy, error) {
	switch s {
	case "additive":
		return AdditiveBrightness, nil
	case "percent":
		return PercentBrightness, nil
	}
	return BrightnessUnset, fmt.Errorf("%w: brightness strategy %q", ErrInvalidSetting, s)
}

// Pipeline applies EditSettings to buffers. The zero value is usable for
// every key except brightness.
type Pipeline struct {
	Brightness BrightnessStrategy
	// Workers caps row parallelism; <= 0 means GOMAXPROCS.
	Workers int
}

// Command is one step of a plan, executable on its own through ApplyCommand.
type Command struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

func (c Command) String() string {
	s := c.Name
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// Plan validates settings and returns the commands Apply would run, in order:
// brightness, contrast, saturation, hue, blur, grayscale, sepia.
// Absent keys, sharpness, and unknown keys produce no command.
func (p Pipeline) Plan(settings EditSettings) ([]Command, error) {
	var plan []Command

	if v, ok, err := finite(settings, KeyBrightness, 0, math.MaxFloat64); err != nil {
		return nil, err
	} else if ok {
		if p.Brightness == BrightnessUnset {
			return nil, ErrNoBrightnessStrategy
		}
		plan = append(plan, Command{Name: "brightness", Args: []string{formatNum(v), p.Brightness.String()}})
	}
	for _, k := range []Key{KeyContrast, KeySaturation} {
		v, ok, err := finite(settings, k, 0, math.MaxFloat64)
		if err != nil {
			return nil, err
		}
		if ok {
			plan = append(plan, Command{Name: string(k), Args: []string{formatNum(v)}})
		}
	}
	if v, ok, err := finite(settings, KeyHue, -math.MaxFloat64, math.MaxFloat64); err != nil {
		return nil, err
	} else if ok {
		plan = append(plan, Command{Name: "hue", Args: []string{formatNum(v)}})
	}
	if v, ok, err := finite(settings, KeyBlur, 0, MaxBlurRadius); err != nil {
		return nil, err
	} else if ok {
		plan = append(plan, Command{Name: "blur", Args: []string{formatNum(v)}})
	}
	if _, _, err := finite(settings, KeySharpness, -math.MaxFloat64, math.MaxFloat64); err != nil {
		return nil, err
	}
	for _, k := range []Key{KeyGrayscale, KeySepia} {
		on, err := settings.Bool(k)
		if err != nil {
			return nil, err
		}
		if on {
			plan = append(plan, Command{Name: string(k)})
		}
	}
	return plan, nil
}

// Apply runs settings over buf in place and returns buf. Settings are fully
// validated first, so on error buf is unchanged. Alpha is never modified.
func (p Pipeline) Apply(buf *Buffer, settings EditSettings) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	plan, err := p.Plan(settings)
	if err != nil {
		return nil, err
	}
	for _, c := range plan {
		if err := p.run(buf, c); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return buf, nil
}

// ApplyMasked applies settings only where mask is set. Pixels outside the
// mask keep their original value. buf is modified in place and returned.
func (p Pipeline) ApplyMasked(buf, mask *Buffer, settings EditSettings) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if err := SameSize(buf, mask); err != nil {
		return nil, err
	}
	edited, err := p.Apply(buf.Clone(), settings)
	if err != nil {
		return nil, err
	}
	if err := CompositeMasked(buf, edited, mask); err != nil {
		return nil, err
	}
	return buf, nil
}

// finite reads a numeric key and checks it lies in [lo,hi].
func finite(s EditSettings, k Key, lo, hi float64) (float64, bool, error) {
	v, ok, err := s.Float(k)
	if err != nil || !ok {
		return 0, ok, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return 0, true, fmt.Errorf("%w: %s=%v out of range", ErrInvalidSetting, k, s[k])
	}
	return v, true, nil
}

func formatNum(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
