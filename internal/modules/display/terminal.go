// Package display renders animation frames as ASCII charts on a terminal.
package display

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"

	"github.com/aristath/qho/internal/modules/animation"
)

const (
	DefaultWidth  = 100
	DefaultHeight = 16

	clearScreen = "\033[H\033[2J"
)

// TerminalOptions configure a TerminalSink
type TerminalOptions struct {
	Width  int
	Height int
	// ANSI enables screen clearing and coloured series.
	ANSI bool
	// ShowLevels adds a chart of the real part of every offset level.
	ShowLevels bool
}

// TerminalSink is an animation.Sink that writes each frame as one or two
// asciigraph charts. Writes are serialized.
type TerminalSink struct {
	mu   sync.Mutex
	out  io.Writer
	opts TerminalOptions
	log  zerolog.Logger

	energyLevels []float64
	parabola     []float64
}

// NewTerminalSink creates a sink writing to out
func NewTerminalSink(out io.Writer, opts TerminalOptions, log zerolog.Logger) *TerminalSink {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	return &TerminalSink{
		out:  out,
		opts: opts,
		log:  log.With().Str("component", "terminal_sink").Logger(),
	}
}

// RenderFrame implements animation.Sink
func (s *TerminalSink) RenderFrame(frame *animation.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame.Redraw {
		s.energyLevels, s.parabola = nil, nil
		if frame.Static != nil {
			s.energyLevels = frame.Static.EnergyLevels
			s.parabola = clip(frame.Static.Parabola, frame.Bounds.YMax)
		}
	}

	var b strings.Builder
	if s.opts.ANSI {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "frame %d  t=%.3f  generation %d\n\n", frame.Index, frame.Time, frame.Generation)

	if s.opts.ShowLevels {
		b.WriteString(s.levelsChart(frame))
		b.WriteString("\n\n")
	}
	b.WriteString(s.superpositionChart(frame))
	b.WriteString("\n")

	w := bufio.NewWriter(s.out)
	if _, err := w.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", frame.Index, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", frame.Index, err)
	}
	return nil
}

// RenderError implements animation.Sink
func (s *TerminalSink) RenderError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, werr := fmt.Fprintf(s.out, "error: %v\n", err); werr != nil {
		s.log.Warn().Err(werr).Msg("Failed to write error")
	}
}

func (s *TerminalSink) superpositionChart(frame *animation.Frame) string {
	var series [][]float64
	var colors []asciigraph.AnsiColor
	if frame.Superposition.Real != nil {
		series = append(series, frame.Superposition.Real)
		colors = append(colors, asciigraph.Blue)
	}
	if frame.Superposition.Imag != nil {
		series = append(series, frame.Superposition.Imag)
		colors = append(colors, asciigraph.Red)
	}
	if len(series) == 0 {
		return "(real and imaginary parts hidden)"
	}

	return asciigraph.PlotMany(series, s.chartOptions(
		frame.Bounds.SuperYMin, frame.Bounds.SuperYMax,
		"superposition Ψ(x,t)", colors)...)
}

func (s *TerminalSink) levelsChart(frame *animation.Frame) string {
	var series [][]float64
	var colors []asciigraph.AnsiColor
	if s.parabola != nil {
		series = append(series, s.parabola)
		colors = append(colors, asciigraph.Green)
	}
	for _, e := range s.energyLevels {
		series = append(series, constant(len(frame.X), e))
		colors = append(colors, asciigraph.Gray)
	}
	for _, lv := range frame.Levels {
		if lv.Real != nil {
			series = append(series, lv.Real)
			colors = append(colors, asciigraph.Blue)
		}
	}
	if len(series) == 0 {
		return "(no level traces)"
	}

	return asciigraph.PlotMany(series, s.chartOptions(
		frame.Bounds.YMin, frame.Bounds.YMax,
		levelsCaption(s.levelCount(frame)), colors)...)
}

// levelCount prefers the traces carried by the frame and falls back to the
// level lines of the last redraw.
func (s *TerminalSink) levelCount(frame *animation.Frame) int {
	if len(frame.Levels) > 0 {
		return len(frame.Levels)
	}
	return len(s.energyLevels)
}

func levelsCaption(n int) string {
	switch n {
	case 0:
		return "levels"
	case 1:
		return "level 0"
	default:
		return fmt.Sprintf("levels 0..%d", n-1)
	}
}

// clip copies v with every value above upper lowered to upper.
func clip(v []float64, upper float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	for i, f := range v {
		if f > upper {
			f = upper
		}
		out[i] = f
	}
	return out
}

func (s *TerminalSink) chartOptions(lower, upper float64, caption string, colors []asciigraph.AnsiColor) []asciigraph.Option {
	opts := []asciigraph.Option{
		asciigraph.Width(s.opts.Width),
		asciigraph.Height(s.opts.Height),
		asciigraph.LowerBound(lower),
		asciigraph.UpperBound(upper),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	}
	if s.opts.ANSI {
		opts = append(opts, asciigraph.SeriesColors(colors...))
	}
	return opts
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
