package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// scheduleGrace pushes the first firing to tomorrow when today's post time
// is less than this far away, so a bot restarted seconds before the post
// doesn't fire into a half-initialized session.
const scheduleGrace = 15 * time.Second

// TimeOfDay is a wall-clock time in UTC.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return TimeOfDay{}, errors.Wrapf(err, "parsing time of day %q", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// NextPostTime returns the next occurrence of at (UTC) strictly more than
// scheduleGrace after now; otherwise tomorrow's occurrence.
func NextPostTime(now time.Time, at TimeOfDay) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, at.Second, 0, time.UTC)
	if next.Sub(now) < scheduleGrace {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// RunDaily invokes job at the next occurrence of at and then every 24 hours
// until ctx is cancelled. It blocks; run it on its own goroutine.
func RunDaily(ctx context.Context, at TimeOfDay, job func()) {
	next := NextPostTime(time.Now(), at)
	delay := time.Until(next)
	slog.Info("scheduling daily post", "next", next, "in", delay.Round(time.Second))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	job()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job()
		}
	}
}
