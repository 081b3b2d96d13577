// Package prompt maps free-text edit requests onto EditSettings with a fixed
// keyword table.
package prompt

import (
	"strings"

	"github.com/samber/lo"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// Rule sets one or more settings when any of its keywords appears.
type Rule struct {
	Keywords []string
	Effects  stdimg.EditSettings
}

// rules are evaluated in order; a later rule overwrites keys set by an earlier one.
var rules = []Rule{
	{[]string{"bright", "vibrant"}, stdimg.EditSettings{stdimg.KeyBrightness: "110"}},
	{[]string{"dark", "dim"}, stdimg.EditSettings{stdimg.KeyBrightness: "90"}},
	{[]string{"contrast"}, stdimg.EditSettings{stdimg.KeyContrast: "120"}},
	{[]string{"color", "saturation", "vibrant"}, stdimg.EditSettings{stdimg.KeySaturation: "130"}},
	{[]string{"black and white", "grayscale"}, stdimg.EditSettings{stdimg.KeyGrayscale: "true"}},
	{[]string{"vintage", "sepia"}, stdimg.EditSettings{stdimg.KeySepia: "true", stdimg.KeySaturation: "80"}},
	{[]string{"blur", "soft", "soft focus"}, stdimg.EditSettings{stdimg.KeyBlur: "1"}},
	{[]string{"warm"}, stdimg.EditSettings{stdimg.KeyHue: "10", stdimg.KeySaturation: "110"}},
	{[]string{"cool"}, stdimg.EditSettings{stdimg.KeyHue: "-10", stdimg.KeySaturation: "90"}},
	{[]string{"professional"}, stdimg.EditSettings{stdimg.KeyContrast: "110", stdimg.KeySharpness: "1.1"}},
	{[]string{"artistic"}, stdimg.EditSettings{stdimg.KeySaturation: "120", stdimg.KeyContrast: "105"}},
}

// Rules returns a copy of the keyword table in evaluation order.
func Rules() []Rule {
	return lo.Map(rules, func(r Rule, _ int) Rule {
		return Rule{Keywords: append([]string(nil), r.Keywords...), Effects: r.Effects.Clone()}
	})
}

// Interpret derives settings from the user's prompt and optional AI analysis
// text. Matching is a case-insensitive substring test against each source
// separately. Unmatched input yields empty settings.
func Interpret(prompt, aiText string) stdimg.EditSettings {
	sources := []string{strings.ToLower(prompt), strings.ToLower(aiText)}
	out := stdimg.EditSettings{}
	for _, r := range rules {
		hit := lo.SomeBy(r.Keywords, func(kw string) bool {
			return lo.SomeBy(sources, func(s string) bool { return strings.Contains(s, kw) })
		})
		if !hit {
			continue
		}
		for k, v := range r.Effects {
			out[k] = v
		}
	}
	return out
}
