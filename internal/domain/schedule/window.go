package schedule

import "time"

// DefaultDuration is the event length used when none is configured.
const DefaultDuration = 60 * time.Minute

// Interval is the window handed to the calendar. Zone only affects rendering;
// Start and End are absolute instants.
type Interval struct {
	Start time.Time
	End   time.Time
	Zone  *time.Location
}

// BuildWindow derives [start, start+d) rendered in zone. A non-positive d falls
// back to DefaultDuration so End is always after Start.
func BuildWindow(start time.Time, d time.Duration, zone *time.Location) Interval {
	if d <= 0 {
		d = DefaultDuration
	}
	if zone == nil {
		zone = start.Location()
	}
	return Interval{
		Start: start.In(zone),
		End:   start.Add(d).In(zone),
		Zone:  zone,
	}
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// ZoneName is the IANA name sent to the calendar API, e.g. "America/Lima".
func (i Interval) ZoneName() string {
	if i.Zone == nil {
		return ""
	}
	return i.Zone.String()
}
