package content

import (
	"kodbot/internal/domain"
	"time"
)

const (
	hoursPerDay        = 24
	morningStartHour   = 6
	middayStartHour    = 11
	afternoonStartHour = 16
	eveningStartHour   = 20
)

// ClassifyHour maps an hour of the day onto a day-part using half-open
// ranges. Hours outside [0,24) are taken modulo 24.
func ClassifyHour(hour int) domain.DayPart {
	hour %= hoursPerDay
	if hour < 0 {
		hour += hoursPerDay
	}

	switch {
	case hour >= morningStartHour && hour < middayStartHour:
		return domain.Morning
	case hour >= middayStartHour && hour < afternoonStartHour:
		return domain.Midday
	case hour >= afternoonStartHour && hour < eveningStartHour:
		return domain.Afternoon
	default:
		return domain.Evening
	}
}

func Classify(t time.Time, loc *time.Location) domain.DayPart {
	if loc != nil {
		t = t.In(loc)
	}

	return ClassifyHour(t.Hour())
}
