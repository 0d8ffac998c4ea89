package domain

import (
	"fmt"
	"strings"
	"time"
)

type DayPart int

const (
	Morning DayPart = iota
	Midday
	Afternoon
	Evening
)

func (d DayPart) String() string {
	switch d {
	case Morning:
		return "morning"
	case Midday:
		return "midday"
	case Afternoon:
		return "afternoon"
	case Evening:
		return "evening"
	default:
		return "unknown"
	}
}

// ScheduleEntry is a wall-clock time of day in the deployment timezone.
type ScheduleEntry struct {
	Hour   int
	Minute int
}

func ParseScheduleEntry(s string) (ScheduleEntry, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ScheduleEntry{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}

	return ScheduleEntry{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (e ScheduleEntry) Clock() string {
	return fmt.Sprintf("%02d:%02d", e.Hour, e.Minute)
}

// On returns the entry's slot on the local date of t.
func (e ScheduleEntry) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), e.Hour, e.Minute, 0, 0, t.Location())
}

type Post struct {
	DayPart  DayPart
	Topic    string
	Body     string
	Hashtags string
	Fallback bool
}

func (p Post) Text() string {
	if p.Hashtags == "" {
		return p.Body
	}

	return p.Body + "\n\n" + p.Hashtags
}
