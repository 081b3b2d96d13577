// Package editor wires decoding, analysis, the remote advisor, prompt
// interpretation and the filter pipeline into single edit requests.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Fepozopo/pixedit/pkg/advisor"
	"github.com/Fepozopo/pixedit/pkg/logging"
	"github.com/Fepozopo/pixedit/pkg/prompt"
	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// ErrEmptyPrompt is returned when the prompt is blank.
var ErrEmptyPrompt = errors.New("editor: please enter an editing prompt")

// advisorPreviewSide bounds the image sent to the advisor.
const advisorPreviewSide = 1024

// Options configures New. Zero fields get working defaults, except that
// Pipeline keeps whatever brightness strategy it is given.
type Options struct {
	Pipeline stdimg.Pipeline
	Advisor  advisor.Advisor
	Guard    prompt.Guard
	Limits   Limits
	Logger   *logging.Logger
}

// Editor runs edit requests. It is safe for concurrent use; each call works
// on its own copy of the input buffer.
type Editor struct {
	pipeline stdimg.Pipeline
	advisor  advisor.Advisor
	guard    prompt.Guard
	limits   Limits
	log      *logging.Logger

	edits      atomic.Int64
	fallbacks  atomic.Int64
	rejections atomic.Int64
}

// New builds an Editor.
func New(opts Options) *Editor {
	e := &Editor{
		pipeline: opts.Pipeline,
		advisor:  opts.Advisor,
		guard:    opts.Guard,
		limits:   opts.Limits,
		log:      opts.Logger,
	}
	if e.advisor == nil {
		e.advisor = advisor.None
	}
	if e.guard == nil {
		e.guard = prompt.NewBlockList()
	}
	if e.limits.MaxFileSize == 0 && len(e.limits.AllowedFormats) == 0 {
		e.limits = DefaultLimits()
	}
	if e.log == nil {
		e.log = logging.Discard()
	}
	e.log = e.log.WithTag("editor")
	return e
}

// Result is the outcome of one edit.
type Result struct {
	ID         string              `json:"id"`
	Prompt     string              `json:"prompt"`
	Image      *stdimg.Buffer      `json:"-"`
	Settings   stdimg.EditSettings `json:"settings"`
	Plan       []stdimg.Command    `json:"plan"`
	AIAnalysis string              `json:"aiAnalysis,omitempty"`
	Fallback   bool                `json:"fallback"`
	Summary    stdimg.Summary      `json:"summary"`
}

// Metrics are cumulative counters since New.
type Metrics struct {
	Edits      int64 `json:"edits"`
	Fallbacks  int64 `json:"fallbacks"`
	Rejections int64 `json:"rejections"`
}

// Metrics returns a snapshot of the counters.
func (e *Editor) Metrics() Metrics {
	return Metrics{Edits: e.edits.Load(), Fallbacks: e.fallbacks.Load(), Rejections: e.rejections.Load()}
}

// Limits reports the decode limits in effect.
func (e *Editor) Limits() Limits { return e.limits }

// Pipeline reports the filter pipeline in effect.
func (e *Editor) Pipeline() stdimg.Pipeline { return e.pipeline }

// Decode validates and decodes an uploaded file.
func (e *Editor) Decode(data []byte) (*stdimg.Buffer, Format, error) {
	buf, f, err := Decode(data, e.limits)
	if err != nil {
		e.log.Warn("rejected upload", logging.Fields{"format": string(f), "size": len(data), "err": err})
	}
	return buf, f, err
}

// Analysis is a Summary plus the edge density of the image.
type Analysis struct {
	stdimg.Summary
	EdgeDensity float64 `json:"edgeDensity"`
}

// Analyze summarizes buf.
func (e *Editor) Analyze(buf *stdimg.Buffer) (Analysis, error) {
	s, err := stdimg.Analyze(buf)
	if err != nil {
		return Analysis{}, err
	}
	edges, err := stdimg.DetectEdges(buf)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{Summary: s, EdgeDensity: stdimg.EdgeDensity(edges)}, nil
}

// Edit applies the edit described by promptText to a copy of buf.
func (e *Editor) Edit(ctx context.Context, buf *stdimg.Buffer, promptText string) (*Result, error) {
	return e.edit(ctx, buf, nil, promptText)
}

// EditMasked is Edit restricted to the pixels selected by mask.
func (e *Editor) EditMasked(ctx context.Context, buf, mask *stdimg.Buffer, promptText string) (*Result, error) {
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if err := stdimg.SameSize(buf, mask); err != nil {
		return nil, err
	}
	return e.edit(ctx, buf, mask, promptText)
}

func (e *Editor) edit(ctx context.Context, buf, mask *stdimg.Buffer, promptText string) (*Result, error) {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		return nil, ErrEmptyPrompt
	}
	if err := e.guard.Check(promptText); err != nil {
		e.rejections.Add(1)
		e.log.Warn("prompt rejected", logging.Fields{"err": err})
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	summary, err := stdimg.Analyze(buf)
	if err != nil {
		return nil, err
	}

	res := &Result{ID: uuid.NewString(), Prompt: promptText, Summary: summary}
	res.AIAnalysis, res.Fallback = e.consult(ctx, buf, promptText, summary)
	if res.Fallback {
		e.fallbacks.Add(1)
	}
	res.Settings = prompt.Interpret(promptText, res.AIAnalysis)
	if res.Plan, err = e.pipeline.Plan(res.Settings); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work := buf.Clone()
	if mask != nil {
		_, err = e.pipeline.ApplyMasked(work, mask, res.Settings)
	} else {
		_, err = e.pipeline.Apply(work, res.Settings)
	}
	if err != nil {
		return nil, fmt.Errorf("apply settings: %w", err)
	}
	res.Image = work
	e.edits.Add(1)
	e.log.Info("edit applied", logging.Fields{
		"id":       res.ID,
		"settings": res.Settings,
		"fallback": res.Fallback,
		"masked":   mask != nil,
	})
	return res, nil
}

// consult asks the advisor for analysis text. It never fails: any problem
// yields empty text and fallback=true.
func (e *Editor) consult(ctx context.Context, buf *stdimg.Buffer, promptText string, s stdimg.Summary) (string, bool) {
	if err := ctx.Err(); err != nil {
		return "", true
	}
	req := advisor.Request{Prompt: promptText, Summary: s}
	if small, err := Preview(buf, advisorPreviewSide); err == nil {
		if data, err := EncodePNG(small); err == nil {
			req.Image, req.MIME = data, FormatPNG.MIME()
		}
	}
	text, err := e.advisor.Advise(ctx, req)
	if err != nil {
		if !errors.Is(err, advisor.ErrFallback) {
			e.log.Warn("advisor failed", logging.Fields{"err": err})
		}
		return "", true
	}
	if strings.TrimSpace(text) == "" {
		return "", true
	}
	return text, false
}
