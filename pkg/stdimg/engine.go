package stdimg

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownCommand is returned by ApplyCommand for names missing from Commands.
var ErrUnknownCommand = errors.New("stdimg: unknown command")

// ApplyCommand runs a single registry command on buf in place and returns buf.
func ApplyCommand(buf *Buffer, commandName string, args []string) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := (Pipeline{}).run(buf, Command{Name: commandName, Args: args}); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p Pipeline) run(buf *Buffer, c Command) error {
	args := c.Args
	switch c.Name {
	case "brightness":
		if len(args) != 2 {
			return fmt.Errorf("brightness requires 2 args: percent strategy")
		}
		pct, err := parsePercent(args[0])
		if err != nil {
			return err
		}
		strategy, err := ParseBrightnessStrategy(args[1])
		if err != nil {
			return err
		}
		if strategy == AdditiveBrightness {
			brightenAdditive(buf, pct, p.Workers)
		} else {
			brightenPercent(buf, pct, p.Workers)
		}

	case "contrast":
		if len(args) != 1 {
			return fmt.Errorf("contrast requires 1 arg: percent")
		}
		pct, err := parsePercent(args[0])
		if err != nil {
			return err
		}
		adjustContrast(buf, pct, p.Workers)

	case "saturation":
		if len(args) != 1 {
			return fmt.Errorf("saturation requires 1 arg: percent")
		}
		pct, err := parsePercent(args[0])
		if err != nil {
			return err
		}
		saturate(buf, pct, p.Workers)

	case "hue":
		if len(args) != 1 {
			return fmt.Errorf("hue requires 1 arg: degrees")
		}
		deg, err := parseNumber(args[0], "degrees")
		if err != nil {
			return err
		}
		rotateHue(buf, deg, p.Workers)

	case "blur":
		if len(args) != 1 {
			return fmt.Errorf("blur requires 1 arg: radius")
		}
		r, err := parseNumber(args[0], "radius")
		if err != nil {
			return err
		}
		if r < 0 || r > MaxBlurRadius {
			return fmt.Errorf("%w: blur radius %v outside 0..%d", ErrInvalidSetting, r, MaxBlurRadius)
		}
		gaussianBlur(buf, r, p.Workers)

	case "grayscale":
		grayscale(buf, p.Workers)

	case "sepia":
		sepia(buf, p.Workers)

	case "edges":
		edges, err := DetectEdges(buf)
		if err != nil {
			return err
		}
		copy(buf.Pix, edges.Pix)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
	return nil
}

func parseNumber(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrInvalidSetting, name, s)
	}
	return v, nil
}

func parsePercent(s string) (float64, error) {
	v, err := parseNumber(s, "percent")
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative percent %v", ErrInvalidSetting, v)
	}
	return v, nil
}
