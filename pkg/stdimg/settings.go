package stdimg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// ErrInvalidSetting is returned when a settings value cannot be parsed or is out of range.
var ErrInvalidSetting = errors.New("stdimg: invalid setting")

// Key names one entry of EditSettings.
type Key string

const (
	KeyBrightness Key = "brightness" // percent, 100 = unchanged
	KeyContrast   Key = "contrast"   // percent
	KeySaturation Key = "saturation" // percent
	KeyHue        Key = "hue"        // signed degrees
	KeyBlur       Key = "blur"       // pixels, >= 0
	KeyGrayscale  Key = "grayscale"  // bool
	KeySepia      Key = "sepia"      // bool
	KeySharpness  Key = "sharpness"  // advisory only, never applied
)

// Keys lists the recognised keys in display order.
var Keys = []Key{KeyBrightness, KeyContrast, KeySaturation, KeyHue, KeyBlur, KeyGrayscale, KeySepia, KeySharpness}

// IsBool reports whether k holds a boolean value.
func (k Key) IsBool() bool { return k == KeyGrayscale || k == KeySepia }

// EditSettings maps a setting name to its value. Numbers are kept as their
// decimal text and booleans as "true"/"false", which is also how they cross
// the boundary to logging and UI layers.
type EditSettings map[Key]string

// SetFloat stores a numeric value.
func (s EditSettings) SetFloat(k Key, v float64) {
	s[k] = strconv.FormatFloat(v, 'f', -1, 64)
}

// SetBool stores a boolean value.
func (s EditSettings) SetBool(k Key, v bool) {
	s[k] = strconv.FormatBool(v)
}

// Float parses a numeric value. ok is false when the key is absent.
func (s EditSettings) Float(k Key) (v float64, ok bool, err error) {
	raw, ok := s[k]
	if !ok {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, k, raw)
	}
	return v, true, nil
}

// Bool reports whether a boolean key is present and true.
func (s EditSettings) Bool(k Key) (bool, error) {
	raw, ok := s[k]
	if !ok {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, k, raw)
	}
	return v, nil
}

// Clone returns an independent copy.
func (s EditSettings) Clone() EditSettings {
	out := make(EditSettings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Entry is one rendered line of the applied-settings view.
type Entry struct {
	Key   Key    `json:"key"`
	Value string `json:"value"`
}

// Entries renders settings for display: booleans as Yes/No, everything else
// verbatim. Known keys come first in Keys order, unknown keys follow sorted.
func (s EditSettings) Entries() []Entry {
	var out []Entry
	for _, k := range Keys {
		if v, ok := s[k]; ok {
			out = append(out, Entry{Key: k, Value: displayValue(k, v)})
		}
	}
	extra := lo.Filter(lo.Keys(s), func(k Key, _ int) bool { return !lo.Contains(Keys, k) })
	sortKeys(extra)
	for _, k := range extra {
		out = append(out, Entry{Key: k, Value: s[k]})
	}
	return out
}

func displayValue(k Key, v string) string {
	if !k.IsBool() {
		return v
	}
	if b, err := strconv.ParseBool(v); err == nil && b {
		return "Yes"
	}
	return "No"
}

// MarshalJSON writes booleans as JSON booleans and numbers as strings.
func (s EditSettings) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s))
	for k, v := range s {
		if k.IsBool() {
			if b, err := strconv.ParseBool(v); err == nil {
				m[string(k)] = b
				continue
			}
		}
		m[string(k)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts strings, numbers and booleans for any key.
func (s *EditSettings) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(EditSettings, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[Key(k)] = t
		case bool:
			out.SetBool(Key(k), t)
		case float64:
			out.SetFloat(Key(k), t)
		default:
			return fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidSetting, k, v)
		}
	}
	*s = out
	return nil
}

func sortKeys(keys []Key) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}
