package usecase

import (
	"fmt"
	"time"

	"NewsScanner/internal/domain"
)

// Range presets accepted by ResolveRange.
const (
	RangeLast7Days  = "7d"
	RangeLast14Days = "14d"
	RangeLast30Days = "30d"
	RangeThisMonth  = "month"
	RangeCustom     = "custom"
)

// DateRange is an inclusive calendar window.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ResolveRange turns a preset into a window ending at now. Custom ranges use from and to as given.
func ResolveRange(preset string, now, from, to time.Time) (DateRange, error) {
	var r DateRange
	switch preset {
	case RangeLast7Days, "":
		r = DateRange{From: now.AddDate(0, 0, -7), To: now}
	case RangeLast14Days:
		r = DateRange{From: now.AddDate(0, 0, -14), To: now}
	case RangeLast30Days:
		r = DateRange{From: now.AddDate(0, 0, -30), To: now}
	case RangeThisMonth:
		r = DateRange{From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), To: now}
	case RangeCustom:
		if from.IsZero() || to.IsZero() {
			return DateRange{}, fmt.Errorf("custom range needs both dates: %w", domain.ErrInvalidRange)
		}
		r = DateRange{From: from, To: to}
	default:
		return DateRange{}, fmt.Errorf("unknown range preset %q: %w", preset, domain.ErrInvalidRange)
	}

	if startOfDay(r.From).After(startOfDay(r.To)) {
		return DateRange{}, fmt.Errorf("from %s after to %s: %w",
			r.From.Format(time.DateOnly), r.To.Format(time.DateOnly), domain.ErrInvalidRange)
	}
	return r, nil
}

// FilterByDate keeps stubs published within [start of from, end of to], comparing wall clocks
// without zone conversion. Stubs without a publish date are dropped. The input is not modified.
func FilterByDate(stubs []domain.ArticleStub, from, to time.Time) []domain.ArticleStub {
	start := startOfDay(from)
	end := endOfDay(to)

	kept := make([]domain.ArticleStub, 0, len(stubs))
	for _, stub := range stubs {
		if stub.PublishedAt == nil {
			continue
		}
		published := domain.Naive(*stub.PublishedAt)
		if published.Before(start) || published.After(end) {
			continue
		}
		kept = append(kept, stub)
	}
	return kept
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
