package analysis

import (
	"testing"
	"time"

	"github.com/lox/climatefuture/internal/models"
)

func monthlySpan(startYear, endYear int) []models.MonthlyRecord {
	var records []models.MonthlyRecord
	for y := startYear; y <= endYear; y++ {
		for m := 1; m <= 12; m++ {
			records = append(records, models.MonthlyRecord{Year: y, Month: m})
		}
	}
	return records
}

func TestSelectWindow_Band(t *testing.T) {
	records := monthlySpan(2020, 2040)
	center := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sizeYears int
		wantLo    int
		wantHi    int
	}{
		{"size 5 gives [2028,2032]", 5, 2028, 2032},
		{"size 4 floors to the same band", 4, 2028, 2032},
		{"size 1 is the center year only", 1, 2030, 2030},
		{"size 10 gives [2025,2035]", 10, 2025, 2035},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := SelectWindow(records, center, tt.sizeYears)
			if w.Empty() {
				t.Fatal("expected non-empty window")
			}
			first, last := w.Records[0], w.Records[len(w.Records)-1]
			if first.Year != tt.wantLo || last.Year != tt.wantHi {
				t.Errorf("band [%d,%d], want [%d,%d]", first.Year, last.Year, tt.wantLo, tt.wantHi)
			}
			wantRows := (tt.wantHi - tt.wantLo + 1) * 12
			if len(w.Records) != wantRows {
				t.Errorf("got %d rows, want %d", len(w.Records), wantRows)
			}
		})
	}
}

func TestSelectWindow_PreservesOrder(t *testing.T) {
	records := monthlySpan(2028, 2032)
	w := SelectWindow(records, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC), 5)

	prev := time.Time{}
	for _, r := range w.Records {
		if d := r.Date(); !d.After(prev) {
			t.Fatalf("records out of order at %d-%02d", r.Year, r.Month)
		} else {
			prev = d
		}
	}
}

func TestSelectWindow_EmptyIsNotAnError(t *testing.T) {
	records := monthlySpan(1950, 2050)
	w := SelectWindow(records, time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC), 5)
	if !w.Empty() {
		t.Fatalf("expected empty window, got %d rows", len(w.Records))
	}
	if w.CenterYear != 2100 || w.SizeYears != 5 {
		t.Errorf("window metadata lost: center %d size %d", w.CenterYear, w.SizeYears)
	}
}

func TestSelectWindow_DefaultSize(t *testing.T) {
	records := monthlySpan(2020, 2040)
	w := SelectWindow(records, time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC), 0)
	if w.SizeYears != DefaultWindowYears {
		t.Errorf("size %d, want default %d", w.SizeYears, DefaultWindowYears)
	}
}
