package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/advisor/advisor"
)

var sampleTable = advisor.ProbabilityTable{
	{Response: "Closed with explanation", Probability: 0.3},
	{Response: "Closed with monetary relief", Probability: 0.5, Escalates: true},
	{Response: "Untimely response", Probability: 0.9, Escalates: true},
}

func TestLayoutBars(t *testing.T) {
	l := layoutBars(sampleTable, 0.5, 400, 304)
	require.Len(t, l.Bars, 3)
	plotH := l.Bottom - l.Top
	assert.Equal(t, float32(200), plotH)

	assert.Equal(t, "Explanation", l.Bars[0].Label)
	assert.False(t, l.Bars[0].Escalates)
	assert.True(t, l.Bars[1].Escalates, "threshold is inclusive")
	assert.True(t, l.Bars[2].Escalates)

	assert.InDelta(t, 60, l.Bars[0].H, 1e-3)
	assert.InDelta(t, 180, l.Bars[2].H, 1e-3)
	assert.InDelta(t, l.Bottom-100, l.ThresholdY, 1e-3)
	for i := 1; i < len(l.Bars); i++ {
		assert.Greater(t, l.Bars[i].X, l.Bars[i-1].X+l.Bars[i-1].W)
	}

	require.Len(t, l.Ticks, 11)
	assert.Equal(t, "0.0", l.Ticks[0].Label)
	assert.Equal(t, "1.0", l.Ticks[10].Label)
	assert.InDelta(t, l.Top, l.Ticks[10].Y, 1e-3)
}

func TestLayoutBarsClampsOutOfRange(t *testing.T) {
	l := layoutBars(advisor.ProbabilityTable{{Response: "Closed", Probability: 1.2}}, 0.5, 200, 200)
	assert.InDelta(t, l.Top, l.Bars[0].Y, 1e-3)
}

func TestChartRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figs", "escalation_prob.png")
	c := NewChart(advisor.RenderConfig{Path: path, Width: 320, Height: 240})
	got, err := c.Render(sampleTable, advisor.EscalationThreshold)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.False(t, img.Bounds().Empty())
}

func TestChartRenderErrors(t *testing.T) {
	_, err := NewChart(advisor.RenderConfig{}).Render(sampleTable, 0.5)
	assert.Error(t, err)
	_, err = NewChart(advisor.RenderConfig{Path: filepath.Join(t.TempDir(), "x.png")}).Render(nil, 0.5)
	assert.Error(t, err)
}

func TestChartImageKeepsRunningApp(t *testing.T) {
	running := test.NewApp()
	img, err := NewChart(advisor.RenderConfig{Width: 200, Height: 120}).Image(sampleTable, 0.5)
	require.NoError(t, err)
	assert.False(t, img.Bounds().Empty())
	assert.Same(t, running, fyne.CurrentApp())
}
