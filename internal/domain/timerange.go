package domain

import (
	"fmt"
	"time"
)

// TimeRange is the coarse window selector accepted by reading queries.
type TimeRange string

const (
	RangeDay     TimeRange = "24h"
	RangeWeek    TimeRange = "7d"
	RangeMonth   TimeRange = "30d"
	RangeQuarter TimeRange = "90d"
	RangeAll     TimeRange = "all"
)

// MaxHistory bounds the "all" selector.
const MaxHistory = 180 * 24 * time.Hour

// ParseTimeRange maps a query selector to a TimeRange. Empty means 24h.
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "":
		return RangeDay, nil
	case RangeDay, RangeWeek, RangeMonth, RangeQuarter, RangeAll:
		return TimeRange(s), nil
	}
	return "", fmt.Errorf("%w: unknown range %q", ErrInvalidRange, s)
}

func (t TimeRange) Window() time.Duration {
	switch t {
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	case RangeQuarter:
		return 90 * 24 * time.Hour
	case RangeAll:
		return MaxHistory
	default:
		return 24 * time.Hour
	}
}

// Cutoff is the earliest instant included for this range at now.
func (t TimeRange) Cutoff(now time.Time) time.Time {
	return now.Add(-t.Window()).UTC()
}
