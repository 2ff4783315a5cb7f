package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"golf/internal/server/golf"
)

var (
	upperColor = drawing.ColorFromHex("c0392b")
	lowerColor = drawing.ColorFromHex("2874a6")
	textColor  = drawing.ColorFromHex("333333")
)

// HistoryChart renders a PNG step chart of the best upper and lower bound of
// an instance over time. now closes both series on the right edge.
func HistoryChart(inst golf.Instance, bounds []golf.Bound, now time.Time) ([]byte, error) {
	if len(bounds) == 0 {
		return renderPlaceholder(fmt.Sprintf("No bounds recorded for %s", inst.Name()))
	}

	end := now
	for _, b := range bounds {
		if b.Submission.CreatedAt.After(end) {
			end = b.Submission.CreatedAt
		}
	}
	if !end.After(bounds[0].Submission.CreatedAt) {
		end = bounds[0].Submission.CreatedAt.Add(time.Hour)
	}

	var series []chart.TimeSeries
	if s := bestSoFar("Upper bound", bounds, golf.KindUpper, end, upperColor); s != nil {
		series = append(series, *s)
	}
	if s := bestSoFar("Lower bound", bounds, golf.KindLower, end, lowerColor); s != nil {
		series = append(series, *s)
	}
	maxY := ceiling(inst, series)
	plotted := make([]chart.Series, 0, len(series))
	for _, s := range series {
		plotted = append(plotted, s)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Bounds for %s", inst.Name()),
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{FontColor: textColor},
		},
		YAxis: chart.YAxis{
			Name:  "Rounds",
			Style: chart.Style{FontColor: textColor},
			Range: &chart.ContinuousRange{Min: 0, Max: maxY + 1},
		},
		Series: plotted,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// ceiling is the largest round count plotted: the trivial bound or any
// value of either series, whichever is higher
func ceiling(inst golf.Instance, series []chart.TimeSeries) float64 {
	maxY := float64(inst.TrivialUpperBound())
	for _, s := range series {
		for _, y := range s.YValues {
			maxY = max(maxY, y)
		}
	}
	return maxY
}

// bestSoFar builds a step series of the best bound of one kind, or nil when
// the kind was never recorded
func bestSoFar(name string, bounds []golf.Bound, kind golf.BoundKind, end time.Time, color drawing.Color) *chart.TimeSeries {
	var (
		xs   []time.Time
		ys   []float64
		best *golf.Bound
	)
	for i := range bounds {
		b := &bounds[i]
		if b.Kind != kind {
			continue
		}
		improved := best == nil ||
			(kind == golf.KindUpper && b.NumRounds < best.NumRounds) ||
			(kind == golf.KindLower && b.NumRounds > best.NumRounds)
		if !improved {
			continue
		}
		if best != nil {
			// Hold the previous value until the improvement
			xs = append(xs, b.Submission.CreatedAt)
			ys = append(ys, float64(best.NumRounds))
		}
		best = b
		xs = append(xs, b.Submission.CreatedAt)
		ys = append(ys, float64(b.NumRounds))
	}
	if best == nil {
		return nil
	}
	xs = append(xs, end)
	ys = append(ys, float64(best.NumRounds))

	return &chart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotWidth:    3,
			DotColor:    color,
		},
	}
}

func renderPlaceholder(msg string) ([]byte, error) {
	// Render needs at least one series; an invisible one anchors the canvas
	anchor := chart.ContinuousSeries{
		XValues: []float64{0, 1},
		YValues: []float64{0, 0},
		Style:   chart.Style{Hidden: true},
	}
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		XAxis:  chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{anchor},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(textColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}
