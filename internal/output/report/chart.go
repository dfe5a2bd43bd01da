package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lueurxax/framing-eval/internal/process/aggregate"
)

const (
	panelSize = 800

	titleOverall   = "Overall Performance"
	titleEmotion   = "Performance by Emotion"
	titleCategory  = "Performance by Attribute"
	titleFailures  = "Failed Questions"
	noDataLabel    = "no data"
	tableMargin    = 24
	tableLineStep  = 16
	tableTitleGap  = 32
	tableColumnGap = 8
)

var (
	colorCorrect   = drawing.ColorFromHex("33cc33")
	colorIncorrect = drawing.ColorFromHex("ff9999")
	colorTotal     = drawing.ColorFromHex("66b3ff")
	colorEmpty     = drawing.ColorFromHex("dddddd")
)

type panel func() (image.Image, error)

// RenderChart writes a PNG with four panels: the overall pie, accuracy by
// emotion, accuracy by category and the list of failed questions. Bars show
// the correct share of each bucket; the label carries the percentage.
func RenderChart(w io.Writer, rep aggregate.Report) error {
	panels := []panel{
		func() (image.Image, error) { return overallPanel(rep.Overall) },
		func() (image.Image, error) { return emotionPanel(rep.ByEmotion) },
		func() (image.Image, error) { return categoryPanel(rep.ByCategory) },
		func() (image.Image, error) { return failuresPanel(rep), nil },
	}

	canvas := image.NewRGBA(image.Rect(0, 0, 2*panelSize, 2*panelSize))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, render := range panels {
		img, err := render()
		if err != nil {
			return fmt.Errorf("render panel %d: %w", i+1, err)
		}

		origin := image.Pt((i%2)*panelSize, (i/2)*panelSize)
		draw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(panelSize, panelSize))}, img, img.Bounds().Min, draw.Over)
	}

	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}

	return nil
}

func overallPanel(overall aggregate.Tally) (image.Image, error) {
	if overall.Total == 0 {
		return placeholder(titleOverall), nil
	}

	pie := chart.PieChart{
		Title:  titleOverall,
		Width:  panelSize,
		Height: panelSize,
		Values: []chart.Value{
			{
				Value: float64(overall.Correct),
				Label: fmt.Sprintf("Correct (%d) %.1f%%", overall.Correct, percent(overall.Correct, overall.Total)),
				Style: chart.Style{FillColor: colorTotal},
			},
			{
				Value: float64(overall.Incorrect()),
				Label: fmt.Sprintf("Incorrect (%d) %.1f%%", overall.Incorrect(), percent(overall.Incorrect(), overall.Total)),
				Style: chart.Style{FillColor: colorIncorrect},
			},
		},
	}

	return renderPNG(pie.Render)
}

type bucket struct {
	label string
	tally aggregate.Tally
}

func emotionPanel(tallies []aggregate.EmotionTally) (image.Image, error) {
	buckets := make([]bucket, 0, len(tallies))
	for _, t := range tallies {
		buckets = append(buckets, bucket{label: t.Phrase, tally: t.Tally})
	}

	return barPanel(titleEmotion, buckets)
}

// categoryPanel omits empty buckets; only categories that occur get a bar.
func categoryPanel(tallies []aggregate.CategoryTally) (image.Image, error) {
	buckets := make([]bucket, 0, len(tallies))

	for _, t := range tallies {
		if t.Total == 0 {
			continue
		}

		buckets = append(buckets, bucket{label: string(t.Category), tally: t.Tally})
	}

	return barPanel(titleCategory, buckets)
}

func barPanel(title string, buckets []bucket) (image.Image, error) {
	bars := make([]chart.StackedBar, 0, len(buckets))
	hasData := false

	for _, b := range buckets {
		values := []chart.Value{
			{Value: float64(b.tally.Correct), Label: "Correct", Style: chart.Style{FillColor: colorCorrect, StrokeColor: colorCorrect}},
			{Value: float64(b.tally.Incorrect()), Label: "Incorrect", Style: chart.Style{FillColor: colorTotal, StrokeColor: colorTotal}},
		}

		if b.tally.Total > 0 {
			hasData = true
		} else {
			// Bars are drawn as shares of their own total; an empty one needs a filler.
			values = []chart.Value{{Value: 1, Label: noDataLabel, Style: chart.Style{FillColor: colorEmpty, StrokeColor: colorEmpty}}}
		}

		bars = append(bars, chart.StackedBar{Name: barLabel(b), Values: values})
	}

	if !hasData {
		return placeholder(title), nil
	}

	sbc := chart.StackedBarChart{
		Title:      title,
		Width:      panelSize,
		Height:     panelSize,
		BarSpacing: 20,
		Bars:       bars,
	}

	return renderPNG(sbc.Render)
}

func barLabel(b bucket) string {
	if b.tally.Total == 0 {
		return b.label
	}

	return fmt.Sprintf("%s %.1f%%", b.label, percent(b.tally.Correct, b.tally.Total))
}

func renderPNG(render func(chart.RendererProvider, io.Writer) error) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(chart.PNG, &buf); err != nil {
		return nil, err
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode panel: %w", err)
	}

	return img, nil
}

func failuresPanel(rep aggregate.Report) image.Image {
	if len(rep.Failures) == 0 {
		return textPanel(titleFailures, []string{"No failed questions."})
	}

	lines := []string{fmt.Sprintf("%s %s %s", pad("Question", questionWidth), pad("Expected", 12), "Actual")}
	for _, rec := range rep.Failures {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			pad(ShortStatement(rec.Statement), questionWidth),
			pad(clip(rec.Expected, 12), 12),
			clip(rec.Actual, 18),
		))
	}

	return textPanel(titleFailures, lines)
}

func placeholder(title string) image.Image {
	return textPanel(title, []string{noDataLabel})
}

// textPanel draws lines in a fixed-width face, dropping those that do not fit.
func textPanel(title string, lines []string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, panelSize, panelSize))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}

	d.Dot = fixed.P(tableMargin, tableMargin+basicfont.Face7x13.Ascent)
	d.DrawString(title)

	y := tableMargin + tableTitleGap + basicfont.Face7x13.Ascent
	for i, line := range lines {
		if y > panelSize-tableMargin {
			d.Dot = fixed.P(tableMargin, y)
			d.DrawString(fmt.Sprintf("... %d more", len(lines)-i))

			break
		}

		d.Dot = fixed.P(tableMargin+tableColumnGap, y)
		d.DrawString(line)
		y += tableLineStep
	}

	return img
}

func clip(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}

	return string(runes[:width-len(ellipsis)]) + ellipsis
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total) * 100
}
