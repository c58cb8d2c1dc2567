package domain

import "time"

// Interval полуоткрытый временной интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval создает интервал длительностью minutes минут от start
func NewInterval(start time.Time, minutes int) Interval {
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

// IsValid returns true if the interval has a positive length
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Overlaps проверяет пересечение интервалов.
// Интервалы, которые только касаются границами (один заканчивается, когда начинается другой), не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}
