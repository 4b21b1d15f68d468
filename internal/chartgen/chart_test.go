package chartgen

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/lox/climatefuture/internal/models"
)

func monthlySeries(years int) []models.MonthlyRecord {
	var records []models.MonthlyRecord
	for y := 0; y < years; y++ {
		for m := 1; m <= 12; m++ {
			records = append(records, models.MonthlyRecord{
				Year:          2000 + y,
				Month:         m,
				TempMax:       20 + 10*math.Sin(float64(m)/12*2*math.Pi),
				Precipitation: 50 + 30*math.Cos(float64(m)/12*2*math.Pi),
			})
		}
	}
	return records
}

func TestTemperature_ProducesPNG(t *testing.T) {
	data, err := Temperature(monthlySeries(30))
	if err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != chartWidth || b.Dy() != chartHeight {
		t.Errorf("dimensions %dx%d, want %dx%d", b.Dx(), b.Dy(), chartWidth, chartHeight)
	}
}

func TestPrecipitation_ProducesPNG(t *testing.T) {
	data, err := Precipitation(monthlySeries(5))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
}

func TestRender_EmptyInput(t *testing.T) {
	if _, err := Temperature(nil); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestRender_AllNaN(t *testing.T) {
	records := []models.MonthlyRecord{
		{Year: 2020, Month: 1, TempMax: math.NaN()},
		{Year: 2020, Month: 2, TempMax: math.NaN()},
	}
	if _, err := Temperature(records); err == nil {
		t.Fatal("expected error when nothing is plottable")
	}
}

func TestRender_NaNGapsDoNotFail(t *testing.T) {
	records := monthlySeries(2)
	records[5].TempMax = math.NaN()

	if _, err := Temperature(records); err != nil {
		t.Fatal(err)
	}
}
