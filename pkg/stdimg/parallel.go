package stdimg

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallelRows is the height below which row loops stay on the calling goroutine.
const minParallelRows = 64

// parallelRows runs fn over [0,h) split into contiguous row ranges.
// Each range writes only its own rows, so output does not depend on scheduling.
func parallelRows(h, workers int, fn func(y0, y1 int)) {
	if h <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, h)
	if workers <= 1 || h < minParallelRows {
		fn(0, h)
		return
	}
	chunk := (h + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += chunk {
		y0 := y0
		y1 := min(y0+chunk, h)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
