// Package advisor asks a remote vision model how an image should be edited.
// Its text answer feeds the local prompt interpreter; any failure is reported
// as ErrFallback so callers can continue with local heuristics.
package advisor

import (
	"context"
	"errors"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// ErrFallback marks advisor failures that callers should absorb by falling
// back to local heuristics.
var ErrFallback = errors.New("advisor: fallback to local heuristics")

// Request is what an advisor sees about an edit.
type Request struct {
	Prompt  string
	Summary stdimg.Summary
	// Image is the encoded image and MIME its content type. Both may be empty.
	Image []byte
	MIME  string
}

// Advisor returns free-form analysis text for an edit request.
type Advisor interface {
	Advise(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Advisor.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Advise(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// Static always answers with the same text.
type Static string

func (s Static) Advise(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Join(ErrFallback, err)
	}
	return string(s), nil
}

// None always signals fallback. It is used when no remote service is configured.
var None Advisor = Func(func(context.Context, Request) (string, error) {
	return "", ErrFallback
})
