package trace

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Plot renders the counter of every timer that appears in the
// records over time, marking overflows, and writes it to w as a PNG
// of the given size in pixels.
func Plot(records []Record, w io.Writer, width, height int) error {
	p := plot.New()
	p.Title.Text = "Timer counters"
	p.X.Label.Text = "cycle"
	p.Y.Label.Text = "counter"

	var counters, overflows [4]plotter.XYs
	for _, rec := range records {
		if rec.Timer < 0 || rec.Timer >= len(counters) {
			continue
		}
		xy := plotter.XY{X: float64(rec.Cycle), Y: float64(rec.Counter)}
		counters[rec.Timer] = append(counters[rec.Timer], xy)
		if rec.Kind == "overflow" {
			overflows[rec.Timer] = append(overflows[rec.Timer], xy)
		}
	}

	for i := range counters {
		if len(counters[i]) == 0 {
			continue
		}
		line, err := plotter.NewLine(counters[i])
		if err != nil {
			return fmt.Errorf("trace: timer %d: %w", i, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("timer %d", i), line)

		if len(overflows[i]) == 0 {
			continue
		}
		points, err := plotter.NewScatter(overflows[i])
		if err != nil {
			return fmt.Errorf("trace: timer %d: %w", i, err)
		}
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(points)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := vgimg.NewWith(vgimg.UseImage(img))
	p.Draw(draw.New(c))

	return png.Encode(w, c.Image())
}
