package mask

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Fepozopo/pixedit/pkg/stdimg"
)

// Path is one pointer-down to pointer-up gesture in display coordinates.
type Path []Point

// Session is a recorded mask request, as sent by a front end that painted
// on a scaled display copy of the image.
type Session struct {
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
	BrushSize     float64 `json:"brush_size"`
	Paths         []Path  `json:"paths"`
}

// Render replays s over src and exports the resulting mask. Zero display
// dimensions mean the display matches the buffer; a zero brush size means
// DefaultBrushSize.
func Render(src *stdimg.Buffer, s Session) (*stdimg.Buffer, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	defer p.Cancel()

	if s.DisplayWidth != 0 || s.DisplayHeight != 0 {
		if err := p.SetDisplaySize(s.DisplayWidth, s.DisplayHeight); err != nil {
			return nil, err
		}
	}
	if s.BrushSize != 0 {
		p.SetBrushSize(s.BrushSize)
	}
	for _, path := range s.Paths {
		if len(path) == 0 {
			continue
		}
		if err := p.BeginStroke(path[0]); err != nil {
			return nil, err
		}
		for _, pt := range path[1:] {
			if err := p.ContinueStroke(pt); err != nil {
				return nil, err
			}
		}
		p.EndStroke()
	}
	return p.Export()
}

// LoadSession reads a JSON-encoded Session from path.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("mask session %s: %w", path, err)
	}
	return s, nil
}
