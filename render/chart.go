// Package render draws escalation probability tables as PNG bar charts using
// the fyne software canvas, so no display is needed.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/software"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"

	"yashubustudio/advisor/advisor"
)

const (
	marginLeft   = 48
	marginRight  = 16
	marginTop    = 32
	marginBottom = 72
)

var (
	colorBar       = color.NRGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}
	colorEscalates = color.NRGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorThreshold = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	colorText      = color.NRGBA{A: 0xff}
	colorAxis      = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

var appOnce sync.Once

// ensureApp installs a headless fyne app when none is running (CLI use).
// software.Render applies its theme through the current app's settings and
// draws on fyne's windowless test canvas, so the test app is the host it
// expects. A running GUI app is left in place.
func ensureApp() {
	appOnce.Do(func() {
		if fyne.CurrentApp() == nil {
			test.NewApp()
		}
	})
}

// Chart renders probability tables to a PNG file. It implements advisor.Renderer.
type Chart struct {
	path   string
	width  int
	height int

	mu sync.Mutex
}

// NewChart creates a chart writer from the render settings.
func NewChart(cfg advisor.RenderConfig) *Chart {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 480
	}
	return &Chart{path: cfg.Path, width: w, height: h}
}

// Width returns the chart width in pixels.
func (c *Chart) Width() int { return c.width }

// Height returns the chart height in pixels.
func (c *Chart) Height() int { return c.height }

// Render draws table and writes it to the configured path, replacing any previous chart.
func (c *Chart) Render(table advisor.ProbabilityTable, threshold float64) (string, error) {
	if c.path == "" {
		return "", errors.New("chart path is not configured")
	}
	img, err := c.Image(table, threshold)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode chart: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := writeFileAtomic(c.path, buf.Bytes()); err != nil {
		return "", err
	}
	return c.path, nil
}

// Image draws table without touching the filesystem.
func (c *Chart) Image(table advisor.ProbabilityTable, threshold float64) (image.Image, error) {
	if len(table) == 0 {
		return nil, errors.New("empty probability table")
	}
	ensureApp()
	l := layoutBars(table, threshold, float32(c.width), float32(c.height))

	bg := canvas.NewRectangle(color.White)
	bg.SetMinSize(fyne.NewSize(float32(c.width), float32(c.height)))
	content := container.NewStack(bg, container.NewWithoutLayout(l.objects()...))
	return software.Render(content, theme.DefaultTheme()), nil
}

type bar struct {
	Label      string
	Value      float64
	X, Y, W, H float32
	Escalates  bool
}

type tick struct {
	Label string
	Y     float32
}

type chartLayout struct {
	Bars       []bar
	Ticks      []tick
	ThresholdY float32
	Left       float32
	Right      float32
	Top        float32
	Bottom     float32
}

// layoutBars computes bar geometry in pixels. Bars at or above threshold are
// flagged for highlighting; the y axis spans [0, 1] with a tick every 0.1.
func layoutBars(table advisor.ProbabilityTable, threshold float64, width, height float32) chartLayout {
	l := chartLayout{
		Left:   marginLeft,
		Right:  width - marginRight,
		Top:    marginTop,
		Bottom: height - marginBottom,
	}
	plotW := l.Right - l.Left
	plotH := l.Bottom - l.Top
	yFor := func(v float64) float32 {
		return l.Bottom - float32(clamp01(v))*plotH
	}
	slot := plotW / float32(len(table))
	for i, row := range table {
		top := yFor(row.Probability)
		l.Bars = append(l.Bars, bar{
			Label:     advisor.DisplayLabel(row.Response),
			Value:     row.Probability,
			X:         l.Left + float32(i)*slot + slot*0.15,
			Y:         top,
			W:         slot * 0.7,
			H:         l.Bottom - top,
			Escalates: row.Probability >= threshold,
		})
	}
	for i := 0; i <= 10; i++ {
		v := float64(i) / 10
		l.Ticks = append(l.Ticks, tick{Label: fmt.Sprintf("%.1f", v), Y: yFor(v)})
	}
	l.ThresholdY = yFor(threshold)
	return l
}

func (l chartLayout) objects() []fyne.CanvasObject {
	var objs []fyne.CanvasObject

	title := canvas.NewText("Dispute probability by company response", colorText)
	title.TextSize = 14
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Move(fyne.NewPos(l.Left, 6))
	objs = append(objs, title)

	for _, t := range l.Ticks {
		label := canvas.NewText(t.Label, colorText)
		label.TextSize = 10
		label.Move(fyne.NewPos(l.Left-30, t.Y-7))
		objs = append(objs, label)
	}
	for _, b := range l.Bars {
		fill := colorBar
		if b.Escalates {
			fill = colorEscalates
		}
		rect := canvas.NewRectangle(fill)
		rect.Move(fyne.NewPos(b.X, b.Y))
		rect.Resize(fyne.NewSize(b.W, b.H))
		objs = append(objs, rect)

		value := canvas.NewText(fmt.Sprintf("%.2f", b.Value), colorText)
		value.TextSize = 10
		value.Move(fyne.NewPos(b.X, b.Y-14))
		objs = append(objs, value)

		name := canvas.NewText(b.Label, colorText)
		name.TextSize = 10
		name.Move(fyne.NewPos(b.X, l.Bottom+6))
		objs = append(objs, name)
	}

	threshold := canvas.NewLine(colorThreshold)
	threshold.StrokeWidth = 1
	threshold.Position1 = fyne.NewPos(l.Left, l.ThresholdY)
	threshold.Position2 = fyne.NewPos(l.Right, l.ThresholdY)
	objs = append(objs, threshold)

	xAxis := canvas.NewLine(colorAxis)
	xAxis.Position1 = fyne.NewPos(l.Left, l.Bottom)
	xAxis.Position2 = fyne.NewPos(l.Right, l.Bottom)
	yAxis := canvas.NewLine(colorAxis)
	yAxis.Position1 = fyne.NewPos(l.Left, l.Top)
	yAxis.Position2 = fyne.NewPos(l.Left, l.Bottom)
	return append(objs, xAxis, yAxis)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp chart: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename chart: %w", err)
	}
	return nil
}
