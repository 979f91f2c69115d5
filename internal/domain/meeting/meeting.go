package meeting

import (
	"time"
)

// Meeting is a calendar event created from a "crear reunión:" command.
type Meeting struct {
	ID       string // set by the calendar once created
	Title    string
	Start    time.Time
	End      time.Time
	Timezone string // IANA zone name, e.g. America/Lima
	Link     string // web link returned by the calendar, may be empty
}
