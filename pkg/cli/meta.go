package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// ParamType is the normalized type of a command argument.
type ParamType string

const (
	ParamTypeInt     ParamType = "int"
	ParamTypeFloat   ParamType = "float"
	ParamTypeBool    ParamType = "bool"
	ParamTypeString  ParamType = "string"
	ParamTypeEnum    ParamType = "enum"
	ParamTypePercent ParamType = "percent"
)

// paramType maps an ArgSpec type string to a ParamType.
func paramType(a stdimg.ArgSpec) ParamType {
	at := strings.ToLower(a.Type)
	switch {
	case at == "int":
		return ParamTypeInt
	case at == "float":
		return ParamTypeFloat
	case at == "bool":
		return ParamTypeBool
	case strings.Contains(at, "percent"):
		return ParamTypePercent
	case at == "enum":
		return ParamTypeEnum
	}
	return ParamTypeString
}

// parseBoolLike accepts common truthy and falsy spellings.
func parseBoolLike(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return "true", nil
	case "0", "f", "false", "n", "no", "off":
		return "false", nil
	}
	return "", fmt.Errorf("invalid boolean: %q", s)
}

// parseNumeric accepts a bare number or one with a trailing percent sign.
func parseNumeric(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %q", s)
	}
	return f, nil
}

// Tooltip renders help text for a command.
func Tooltip(c stdimg.CommandSpec) string {
	var sb strings.Builder
	sb.WriteString(c.Description)
	if c.Usage != "" {
		sb.WriteString("\nusage: " + c.Usage)
	}
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		fmt.Fprintf(&sb, "\n- %s (%s, %s)", a.Name, a.Type, req)
		if a.Description != "" {
			sb.WriteString(": " + a.Description)
		}
		if a.Default != "" {
			sb.WriteString(" (default: " + a.Default + ")")
		}
	}
	return sb.String()
}

// NormalizeArgs validates raw input against the command's ArgSpecs and
// returns canonical argument strings. Empty optional args take their
// default.
func NormalizeArgs(name string, args []string) ([]string, error) {
	c, ok := stdimg.LookupCommand(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", stdimg.ErrUnknownCommand, name)
	}
	out := make([]string, 0, len(c.Args))
	for i, a := range c.Args {
		raw := ""
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			raw = a.Default
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required parameter: %s", a.Name)
			}
			out = append(out, "")
			continue
		}
		switch paramType(a) {
		case ParamTypeInt:
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected integer, got %q", a.Name, raw)
			}
			out = append(out, strconv.FormatInt(v, 10))
		case ParamTypeFloat, ParamTypePercent:
			f, err := parseNumeric(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
		case ParamTypeBool:
			b, err := parseBoolLike(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out = append(out, b)
		case ParamTypeEnum:
			v, err := normalizeEnum(a.Name, raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out = append(out, v)
		default:
			out = append(out, raw)
		}
	}
	return out, nil
}

func normalizeEnum(param, raw string) (string, error) {
	switch param {
	case "strategy":
		s, err := stdimg.ParseBrightnessStrategy(strings.ToLower(raw))
		if err != nil {
			return "", err
		}
		return s.String(), nil
	}
	return strings.ToLower(raw), nil
}
