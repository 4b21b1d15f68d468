package analysis

import (
	"time"

	"github.com/lox/climatefuture/internal/models"
)

// DefaultWindowYears is the width of the comparison windows when the caller
// does not choose one.
const DefaultWindowYears = 5

// Window is a contiguous year-bounded slice of monthly records centered on a
// date. An empty window is a valid state, not an error: callers must check
// Empty before computing statistics over it.
type Window struct {
	CenterYear int
	SizeYears  int
	Records    []models.MonthlyRecord
}

// Empty reports whether the window contains no records.
func (w Window) Empty() bool {
	return len(w.Records) == 0
}

// SelectWindow extracts the records whose year falls in the inclusive band
// [centerYear-halfWidth, centerYear+halfWidth], where halfWidth is
// sizeYears/2 with integer floor division. A size of 4 and 5 therefore give
// the same band; that asymmetry is relied on by downstream numbers.
func SelectWindow(records []models.MonthlyRecord, center time.Time, sizeYears int) Window {
	if sizeYears <= 0 {
		sizeYears = DefaultWindowYears
	}
	halfWidth := sizeYears / 2
	centerYear := center.UTC().Year()
	lo, hi := centerYear-halfWidth, centerYear+halfWidth

	w := Window{CenterYear: centerYear, SizeYears: sizeYears}
	for _, r := range records {
		if r.Year >= lo && r.Year <= hi {
			w.Records = append(w.Records, r)
		}
	}
	return w
}
