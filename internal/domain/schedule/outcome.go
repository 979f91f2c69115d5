package schedule

// Reason says why a command could not be turned into an interval.
type Reason int

const (
	ReasonNone Reason = iota
	NoTemporalExpressionFound
	InvalidCalendarDate
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case NoTemporalExpressionFound:
		return "no_temporal_expression_found"
	case InvalidCalendarDate:
		return "invalid_calendar_date"
	default:
		return "unknown"
	}
}

// Outcome is the result of ResolveMeeting: either a resolved interval with the
// cleaned title, or a Reason.
type Outcome struct {
	Interval   Interval
	Title      string
	Expression Expression
	Reason     Reason
}

func Resolved(interval Interval, title string, expr Expression) Outcome {
	return Outcome{Interval: interval, Title: title, Expression: expr}
}

func Unresolved(reason Reason) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) IsResolved() bool {
	return o.Reason == ReasonNone
}
