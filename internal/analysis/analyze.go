package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/climatefuture/internal/models"
)

// ErrInsufficientData indicates that one of the comparison windows contains
// no records, e.g. a target year far outside model coverage. It is an
// expected result, not a crash.
var ErrInsufficientData = errors.New("insufficient data for requested window")

// AnalysisResult is the unit of output for one (location, target-year)
// request: both window snapshots plus the flattened delta map.
type AnalysisResult struct {
	Current *WindowStatistics `json:"current"`
	Future  *WindowStatistics `json:"future"`
	Changes ChangeMap         `json:"changes"`
}

// Analyze runs the full comparison over an aggregated monthly series: select
// the current window around currentDate and the future window around
// targetDate, compute statistics for both and diff them. The current date is
// an explicit parameter so the computation is deterministic under test.
func Analyze(records []models.MonthlyRecord, currentDate, targetDate time.Time, windowYears int) (*AnalysisResult, error) {
	currentWindow := SelectWindow(records, currentDate, windowYears)
	futureWindow := SelectWindow(records, targetDate, windowYears)

	current := ComputeWindowStatistics(currentWindow)
	if current == nil {
		return nil, fmt.Errorf("current window %d: %w", currentWindow.CenterYear, ErrInsufficientData)
	}
	future := ComputeWindowStatistics(futureWindow)
	if future == nil {
		return nil, fmt.Errorf("future window %d: %w", futureWindow.CenterYear, ErrInsufficientData)
	}

	changes, err := Diff(current, future)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{Current: current, Future: future, Changes: changes}, nil
}
