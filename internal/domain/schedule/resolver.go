// Package schedule turns free-text Spanish meeting requests ("reunión equipo
// mañana a las 3pm") into a calendar interval in a fixed civil timezone.
//
// Everything here is pure: the reference instant is always passed in and no
// state is shared between calls.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // the civil zone must resolve even on hosts without a zoneinfo database

	"github.com/samber/mo"
)

const DefaultTimezone = "America/Lima"

// Resolver is the entry point used by the command handlers.
type Resolver struct {
	parser *Parser
	loc    *time.Location
}

// NewResolver fails when the zone cannot be loaded; that is a configuration
// fault, not something a user message can cause.
func NewResolver(timezone string) (*Resolver, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Resolver{parser: NewParser(loc), loc: loc}, nil
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// ResolveMeeting parses text, applies rollover and builds a window of length d.
// It always returns an Outcome; unparsable text is reported through its Reason.
func (r *Resolver) ResolveMeeting(text string, ref time.Time, d time.Duration) Outcome {
	expr, err := r.parser.Scan(text, ref)
	var start time.Time
	if err == nil {
		start, err = Resolve(expr, ref)
	}
	switch {
	case errors.Is(err, ErrInvalidCalendarDate):
		return Unresolved(InvalidCalendarDate)
	case err != nil:
		return Unresolved(NoTemporalExpressionFound)
	}

	return Resolved(BuildWindow(start, d, r.loc), Title(text, expr), expr)
}

// ResolveDue looks for an optional due date in a task text. The title comes
// back with the date phrase removed when one was found.
func (r *Resolver) ResolveDue(text string, ref time.Time) (string, mo.Option[time.Time]) {
	expr, err := r.parser.Scan(text, ref)
	if err != nil {
		return collapse(text), mo.None[time.Time]()
	}
	due, err := Resolve(expr, ref)
	if err != nil {
		return collapse(text), mo.None[time.Time]()
	}
	return Title(text, expr), mo.Some(due)
}

// Title removes the expression from text, along with connectors left hanging
// before it ("reunión con Ana el" -> "reunión con Ana"). If nothing is left the
// whole text is the title.
func Title(text string, expr Expression) string {
	left := trimDangling(text[:expr.Start])
	right := strings.TrimLeft(text[expr.End:], " ,;:-")
	title := strings.Trim(collapse(left+" "+right), " ,;:-")
	if title == "" {
		return collapse(text)
	}
	return title
}

func trimDangling(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		last := strings.TrimRight(Fold(words[len(words)-1]).Text, ",;:-")
		if last != "" && !connectors[last] {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
