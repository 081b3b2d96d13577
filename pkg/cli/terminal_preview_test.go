package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

func testBuffer(t *testing.T, w, h int) *stdimg.Buffer {
	t.Helper()
	b, err := stdimg.NewBuffer(w, h)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	b.Fill(200, 100, 50, 255)
	return b
}

func TestPreviewInlineSequence(t *testing.T) {
	var out bytes.Buffer
	if err := RenderPreview(&out, BackendInline, testBuffer(t, 2, 2)); err != nil {
		t.Fatalf("RenderPreview error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "\x1b]1337;File=name=preview.png;inline=1;") {
		t.Fatalf("expected inline 1337 sequence, got: %q", out.String())
	}
}

func TestPreviewKittyChunks(t *testing.T) {
	var out bytes.Buffer
	if err := RenderPreview(&out, BackendKitty, testBuffer(t, 600, 400)); err != nil {
		t.Fatalf("RenderPreview error: %v", err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "\x1b_Ga=T,f=100,t=d,q=2,") {
		t.Fatalf("expected kitty header, got prefix %q", s[:min(40, len(s))])
	}
	if strings.Count(s, "\x1b_G") > 1 && !strings.Contains(s, "\x1b_Gm=0;") {
		t.Fatalf("multi-chunk payload must end with m=0")
	}
}

func TestPreviewNoBackend(t *testing.T) {
	var out bytes.Buffer
	if err := RenderPreview(&out, BackendNone, testBuffer(t, 1, 1)); err == nil {
		t.Fatalf("expected error without a backend")
	}
	if err := RenderPreview(&out, BackendInline, nil); err == nil {
		t.Fatalf("expected error for nil buffer")
	}
}

func TestComputePreviewSize(t *testing.T) {
	cases := []struct {
		w, h       int
		cols, rows int
	}{
		{10, 10, minCols, minRows},
		{640, 640, 80, 40},
		{6400, 640, 80, 4},
		{0, 5, minCols, minRows},
	}
	for _, c := range cases {
		got := computePreviewSize(c.w, c.h)
		if got.Cols != c.cols || got.Rows != c.rows {
			t.Fatalf("computePreviewSize(%d,%d) = %+v, want %dx%d", c.w, c.h, got, c.cols, c.rows)
		}
	}
}

func TestDetectBackendOverride(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "Chafa")
	if got := DetectBackend(); got != BackendChafa {
		t.Fatalf("DetectBackend() = %q, want chafa", got)
	}
	t.Setenv("PREVIEW_BACKEND", "")
	t.Setenv("KITTY_WINDOW_ID", "1")
	if got := DetectBackend(); got != BackendKitty {
		t.Fatalf("DetectBackend() = %q, want kitty", got)
	}
}
