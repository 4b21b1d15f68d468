package chartgen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lox/climatefuture/internal/models"
)

// Chart dimensions and margins, in pixels.
const (
	chartWidth  = 900
	chartHeight = 420

	marginLeft   = 60
	marginRight  = 20
	marginTop    = 40
	marginBottom = 50
)

var (
	background = color.RGBA{255, 255, 255, 255}
	axisColor  = color.RGBA{60, 60, 60, 255}
	gridColor  = color.RGBA{225, 225, 225, 255}
	textColor  = color.RGBA{40, 40, 40, 255}
	lineColor  = color.RGBA{31, 119, 180, 255}
	rainColor  = color.RGBA{44, 130, 80, 255}
)

// Temperature renders the monthly maximum temperature series as a PNG.
func Temperature(records []models.MonthlyRecord) ([]byte, error) {
	return render("Monthly maximum temperature", "°C", lineColor, records,
		func(r models.MonthlyRecord) float64 { return r.TempMax })
}

// Precipitation renders the monthly precipitation series as a PNG.
func Precipitation(records []models.MonthlyRecord) ([]byte, error) {
	return render("Monthly precipitation", "mm", rainColor, records,
		func(r models.MonthlyRecord) float64 { return r.Precipitation })
}

func render(title, unit string, stroke color.RGBA, records []models.MonthlyRecord, value func(models.MonthlyRecord) float64) ([]byte, error) {
	if len(records) == 0 {
		return nil, errors.New("no records to chart")
	}

	values := make([]float64, len(records))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range records {
		v := value(r)
		values[i] = v
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if math.IsInf(lo, 1) {
		return nil, errors.New("no plottable values")
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	// Pad the value range so the line does not hug the frame.
	pad := (hi - lo) * 0.05
	lo, hi = lo-pad, hi+pad

	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fill(img, background)

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom

	xAt := func(i int) int {
		if len(records) == 1 {
			return marginLeft + plotW/2
		}
		return marginLeft + i*plotW/(len(records)-1)
	}
	yAt := func(v float64) int {
		frac := (v - lo) / (hi - lo)
		return marginTop + plotH - int(frac*float64(plotH))
	}

	// Horizontal gridlines and value labels at five even steps.
	for step := 0; step <= 5; step++ {
		v := lo + (hi-lo)*float64(step)/5
		y := yAt(v)
		hline(img, marginLeft, chartWidth-marginRight, y, gridColor)
		label(img, 6, y+4, fmt.Sprintf("%.0f", v), textColor)
	}

	// Year ticks every ten years.
	lastYear := -1
	for i, r := range records {
		if r.Month != 1 || r.Year%10 != 0 || r.Year == lastYear {
			continue
		}
		lastYear = r.Year
		x := xAt(i)
		vline(img, x, marginTop, chartHeight-marginBottom, gridColor)
		label(img, x-14, chartHeight-marginBottom+18, fmt.Sprintf("%d", r.Year), textColor)
	}

	// Axes.
	hline(img, marginLeft, chartWidth-marginRight, chartHeight-marginBottom, axisColor)
	vline(img, marginLeft, marginTop, chartHeight-marginBottom, axisColor)

	// The series itself. NaN values break the line rather than plotting zero.
	prevX, prevY, havePrev := 0, 0, false
	for i, v := range values {
		if math.IsNaN(v) {
			havePrev = false
			continue
		}
		x, y := xAt(i), yAt(v)
		if havePrev {
			line(img, prevX, prevY, x, y, stroke)
		}
		prevX, prevY, havePrev = x, y, true
	}

	label(img, marginLeft, 22, fmt.Sprintf("%s (%s)", title, unit), textColor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y, c)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

// line draws a segment with the integer Bresenham algorithm.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func label(img *image.RGBA, x, y int, s string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
