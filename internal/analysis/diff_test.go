package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/lox/climatefuture/internal/models"
)

func sampleStats(t *testing.T, offset float64) *WindowStatistics {
	t.Helper()
	var records []models.MonthlyRecord
	for i := 0; i < 60; i++ {
		records = append(records, models.MonthlyRecord{
			Year:          2028 + i/12,
			Month:         i%12 + 1,
			TempMean:      15 + offset,
			TempMax:       28 + offset,
			TempMin:       2 + offset,
			WindMax:       40 + offset,
			CloudCover:    55 + offset,
			Radiation:     420 + offset,
			HumidityMax:   88 + offset,
			HumidityMin:   35 + offset,
			Precipitation: 50 + offset,
			Snowfall:      5 + offset,
		})
	}
	stats := ComputeWindowStatistics(Window{CenterYear: 2030, SizeYears: 5, Records: records})
	if stats == nil {
		t.Fatal("expected non-nil statistics")
	}
	return stats
}

func TestDiff_LeafDeltas(t *testing.T) {
	current := sampleStats(t, 0)
	future := sampleStats(t, 2)

	changes, err := Diff(current, future)
	if err != nil {
		t.Fatal(err)
	}

	// Every constant field shifted by +2, so every mean/extreme delta is 2.
	for _, key := range []string{
		"means_temp_mean_change",
		"means_cloud_cover_change",
		"means_humidity_mean_change",
		"extremes_temp_max_change",
		"extremes_temp_min_change",
		"extremes_wind_max_change",
		"seasonal_winter_temp_mean_change",
		"seasonal_summer_wind_max_change",
	} {
		got, ok := changes[key]
		if !ok {
			t.Fatalf("missing key %q", key)
		}
		if !almostEqual(got, 2) {
			t.Errorf("%s = %.4f, want 2", key, got)
		}
	}
}

func TestDiff_KeySet(t *testing.T) {
	current := sampleStats(t, 0)
	future := sampleStats(t, 1)

	changes, err := Diff(current, future)
	if err != nil {
		t.Fatal(err)
	}

	// 4 means + 5 extremes + 4 cumulative + 3 extreme events + 4 seasons x 5.
	if len(changes) != 36 {
		t.Errorf("got %d keys, want 36", len(changes))
	}
	for key := range changes {
		if !strings.HasSuffix(key, "_change") {
			t.Errorf("key %q missing _change suffix", key)
		}
	}
}

func TestDiff_AntiSymmetry(t *testing.T) {
	a := sampleStats(t, 0)
	b := sampleStats(t, 3)

	forward, err := Diff(a, b)
	if err != nil {
		t.Fatal(err)
	}
	backward, err := Diff(b, a)
	if err != nil {
		t.Fatal(err)
	}

	for key, v := range forward {
		if !almostEqual(v, -backward[key]) {
			t.Errorf("%s: %.4f != -%.4f", key, v, backward[key])
		}
	}
}

func TestDiff_ShapeMismatch(t *testing.T) {
	current := sampleStats(t, 0)
	future := sampleStats(t, 1)
	delete(future.Seasonal, SeasonAutumn)

	_, err := Diff(current, future)
	if err == nil {
		t.Fatal("expected shape mismatch error")
	}
	var mismatch *ErrShapeMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *ErrShapeMismatch, got %T", err)
	}
}
