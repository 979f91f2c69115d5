// Package ics renders created meetings as iCalendar attachments, so the
// confirmation can be imported into calendars other than Google's.
package ics

import (
	"errors"
	"time"

	"personal_assistant_bot/internal/domain/meeting"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const productID = "-//personal_assistant_bot//ES"

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render builds a single-event calendar. The calendar event ID doubles as
// the UID when present so re-imports update the same event.
func (r *Renderer) Render(m *meeting.Meeting, now time.Time) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil meeting")
	}
	if !m.End.After(m.Start) {
		return nil, errors.New("meeting ends before it starts")
	}

	uid := m.ID
	if uid == "" {
		uid = uuid.NewString()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	event := cal.AddEvent(uid + "@personal-assistant-bot")
	event.SetDtStampTime(now)
	event.SetStartAt(m.Start)
	event.SetEndAt(m.End)
	event.SetSummary(m.Title)
	if m.Link != "" {
		event.SetURL(m.Link)
	}

	return []byte(cal.Serialize()), nil
}
