package core

import "strings"

// TimeGranularity is a standard time grain. Values are ordered from finest to coarsest.
type TimeGranularity int

// Standard granularities, finest first.
const (
	GranularityNanosecond TimeGranularity = iota
	GranularityMicrosecond
	GranularityMillisecond
	GranularitySecond
	GranularityMinute
	GranularityHour
	GranularityDay
	GranularityWeek
	GranularityMonth
	GranularityQuarter
	GranularityYear
)

var granularityNames = [...]string{
	"nanosecond", "microsecond", "millisecond", "second", "minute",
	"hour", "day", "week", "month", "quarter", "year",
}

// AllGranularities lists every standard granularity, finest first.
func AllGranularities() []TimeGranularity {
	grains := make([]TimeGranularity, len(granularityNames))
	for i := range granularityNames {
		grains[i] = TimeGranularity(i)
	}
	return grains
}

func (g TimeGranularity) String() string {
	if g < 0 || int(g) >= len(granularityNames) {
		return "unknown"
	}
	return granularityNames[g]
}

// IsFinerThan reports whether g is strictly finer than other.
func (g TimeGranularity) IsFinerThan(other TimeGranularity) bool { return g < other }

// ParseTimeGranularity converts a case-insensitive name to a standard granularity.
func ParseTimeGranularity(s string) (TimeGranularity, bool) {
	lower := strings.ToLower(s)
	for i, name := range granularityNames {
		if name == lower {
			return TimeGranularity(i), true
		}
	}
	return GranularityDay, false
}

// DatePart is a component extracted from a date, e.g. the year of a timestamp.
type DatePart int

// Supported date parts.
const (
	DatePartYear DatePart = iota
	DatePartQuarter
	DatePartMonth
	DatePartWeek
	DatePartDay
	DatePartDayOfWeek
	DatePartDayOfYear
)

var datePartNames = [...]string{"year", "quarter", "month", "week", "day", "dow", "doy"}

// AllDateParts lists every supported date part.
func AllDateParts() []DatePart {
	parts := make([]DatePart, len(datePartNames))
	for i := range datePartNames {
		parts[i] = DatePart(i)
	}
	return parts
}

func (p DatePart) String() string {
	if p < 0 || int(p) >= len(datePartNames) {
		return "unknown"
	}
	return datePartNames[p]
}

// MinGranularity is the finest grain a time dimension needs for this part to be extractable.
func (p DatePart) MinGranularity() TimeGranularity {
	switch p {
	case DatePartYear:
		return GranularityYear
	case DatePartQuarter:
		return GranularityQuarter
	case DatePartMonth:
		return GranularityMonth
	case DatePartWeek:
		return GranularityWeek
	default:
		return GranularityDay
	}
}

// ParseDatePart converts a case-insensitive name to a DatePart.
func ParseDatePart(s string) (DatePart, bool) {
	lower := strings.ToLower(s)
	for i, name := range datePartNames {
		if name == lower {
			return DatePart(i), true
		}
	}
	return DatePartYear, false
}

// CustomGranularity is a named grain defined on the time spine (e.g. "fiscal_quarter").
type CustomGranularity struct {
	Name string
	// BaseGranularity is the grain of the time spine column the custom grain is derived from.
	BaseGranularity TimeGranularity
}
