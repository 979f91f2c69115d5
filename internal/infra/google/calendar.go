// internal/infra/google/calendar.go
package google

import (
	"context"
	"fmt"
	"time"

	"personal_assistant_bot/internal/domain/credential"
	"personal_assistant_bot/internal/domain/meeting"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Calendar creates events in a Google Calendar.
type Calendar struct {
	base
	calendarID string
}

func NewCalendar(calendarID string, rps float64, opts ...option.ClientOption) *Calendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Calendar{base: newBase(rps, opts), calendarID: calendarID}
}

func (c *Calendar) CreateEvent(ctx context.Context, cred *credential.Credential, m *meeting.Meeting) error {
	if !cred.Authorized() {
		return credential.ErrNotAuthorized
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("calendar rate limiter: %w", err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(cred.TokenSource(ctx))}, c.opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	event := &calendar.Event{
		Summary: m.Title,
		Start:   &calendar.EventDateTime{DateTime: m.Start.Format(time.RFC3339), TimeZone: m.Timezone},
		End:     &calendar.EventDateTime{DateTime: m.End.Format(time.RFC3339), TimeZone: m.Timezone},
	}
	created, err := svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	m.ID = created.Id
	m.Link = created.HtmlLink
	return nil
}
