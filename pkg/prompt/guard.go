package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrBlockedPrompt is returned when a prompt contains a blocked term.
var ErrBlockedPrompt = errors.New("prompt: blocked term")

// Guard decides whether a prompt may be processed.
type Guard interface {
	Check(prompt string) error
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(prompt string) error

func (f GuardFunc) Check(prompt string) error { return f(prompt) }

// DefaultBlockedTerms is the term list used by NewBlockList when none is given.
var DefaultBlockedTerms = []string{
	"violent", "harmful", "illegal", "adult", "nude", "naked",
	"weapon", "blood", "gore", "explicit", "sexual",
}

// BlockList rejects prompts containing any listed term as a substring.
type BlockList struct {
	terms []string
}

// NewBlockList lower-cases and de-duplicates terms; empty input selects DefaultBlockedTerms.
func NewBlockList(terms ...string) *BlockList {
	if len(terms) == 0 {
		terms = DefaultBlockedTerms
	}
	clean := lo.Uniq(lo.FilterMap(terms, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	}))
	return &BlockList{terms: clean}
}

// Check returns ErrBlockedPrompt naming the first matching term.
func (b *BlockList) Check(prompt string) error {
	lower := strings.ToLower(prompt)
	if term, ok := lo.Find(b.terms, func(t string) bool { return strings.Contains(lower, t) }); ok {
		return fmt.Errorf("%w: %q", ErrBlockedPrompt, term)
	}
	return nil
}

// Terms returns the active term list.
func (b *BlockList) Terms() []string { return append([]string(nil), b.terms...) }
