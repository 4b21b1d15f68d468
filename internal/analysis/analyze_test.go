package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lox/climatefuture/internal/models"
)

// syntheticDaily builds daily records for Jan startYear through Dec endYear
// with a linear warming trend injected into the daily mean temperature.
func syntheticDaily(startYear, endYear int, baseTemp, trendPerYear float64) []models.DailyRecord {
	var daily []models.DailyRecord
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		temp := baseTemp + trendPerYear*float64(d.Year()-startYear)
		daily = append(daily, models.DailyRecord{
			Date:          d,
			TempMean:      temp,
			TempMax:       temp + 8,
			TempMin:       temp - 8,
			WindMax:       30,
			CloudCover:    50,
			Radiation:     15,
			HumidityMax:   85,
			HumidityMin:   45,
			Precipitation: 2,
			Snowfall:      0,
		})
	}
	return daily
}

func TestAnalyze_WarmingTrend(t *testing.T) {
	monthly := AggregateMonthly(syntheticDaily(2020, 2034, 14.0, 0.05))

	currentDate := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(2032, time.June, 15, 0, 0, 0, 0, time.UTC)

	result, err := Analyze(monthly, currentDate, targetDate, 5)
	if err != nil {
		t.Fatal(err)
	}

	delta := result.Future.Means.TempMean - result.Current.Means.TempMean
	want := 0.05 * float64(2032-2024)
	if math.Abs(delta-want) > 0.01 {
		t.Errorf("temp mean delta %.4f, want ~%.4f", delta, want)
	}

	if got := result.Changes["means_temp_mean_change"]; !almostEqual(got, delta) {
		t.Errorf("change map delta %.4f does not match recomputed %.4f", got, delta)
	}
}

func TestAnalyze_InsufficientFutureData(t *testing.T) {
	monthly := AggregateMonthly(syntheticDaily(2020, 2034, 14.0, 0))

	currentDate := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := Analyze(monthly, currentDate, targetDate, 5)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyze_InsufficientCurrentData(t *testing.T) {
	monthly := AggregateMonthly(syntheticDaily(2030, 2034, 14.0, 0))

	currentDate := time.Date(2010, time.June, 15, 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(2032, time.June, 15, 0, 0, 0, 0, time.UTC)

	_, err := Analyze(monthly, currentDate, targetDate, 5)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyze_NoChangesWithoutTrend(t *testing.T) {
	monthly := AggregateMonthly(syntheticDaily(2020, 2034, 14.0, 0))

	currentDate := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(2032, time.June, 15, 0, 0, 0, 0, time.UTC)

	result, err := Analyze(monthly, currentDate, targetDate, 5)
	if err != nil {
		t.Fatal(err)
	}
	for key, v := range result.Changes {
		if math.Abs(v) > 1e-9 {
			t.Errorf("%s = %.6f, want 0 for a flat series", key, v)
		}
	}
}
