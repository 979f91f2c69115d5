// internal/app/assistant_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"personal_assistant_bot/internal/domain/credential"
	"personal_assistant_bot/internal/domain/meeting"
	"personal_assistant_bot/internal/domain/schedule"
	"personal_assistant_bot/internal/domain/task"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
)

// Command prefixes, already folded (lower case, no accents).
const (
	taskPrefix    = "agregar tarea:"
	meetingPrefix = "crear reunion:"
)

// User-facing replies.
const (
	MsgTaskCreated       = "📝 Tarea creada: %s"
	MsgMeetingCreated    = "📅 Reunión creada: %s el %s a las %s"
	MsgDateNotUnderstood = "❌ No pude entender la fecha."
	MsgUnknownCommand    = "🤖 Comando no reconocido. Usa \"Agregar tarea:\" o \"Crear reunión:\""
	MsgNeedsAuth         = "🔑 Primero necesito acceso a tu cuenta de Google. Abre %s para autorizarme."
	MsgEmptyTitle        = "✏️ Escribe algo después de los dos puntos, por ejemplo \"Agregar tarea: comprar leche\"."
	MsgTaskFailed        = "⚠️ No pude crear la tarea. Intenta de nuevo en unos minutos."
	MsgMeetingFailed     = "⚠️ No pude crear la reunión. Intenta de nuevo en unos minutos."
	MsgAttachmentName    = "reunion.ics"
	MsgAttachmentMIME    = "text/calendar"
	dateLayout           = "02/01/2006"
	clockLayout          = "15:04"
)

// ICSRenderer turns a created meeting into an iCalendar file.
type ICSRenderer interface {
	Render(m *meeting.Meeting, now time.Time) ([]byte, error)
}

// Attachment is a file sent along with a reply.
type Attachment struct {
	FileName string
	MIME     string
	Content  []byte
}

// Reply is what the chat transport sends back for a command.
type Reply struct {
	Text       string
	Attachment mo.Option[Attachment]
}

func textReply(format string, args ...any) Reply {
	if len(args) == 0 {
		return Reply{Text: format}
	}
	return Reply{Text: fmt.Sprintf(format, args...)}
}

// AssistantService dispatches the "agregar tarea:" and "crear reunión:"
// commands to the task list and calendar.
type AssistantService struct {
	resolver *schedule.Resolver
	calendar meeting.Calendar
	tasks    task.List
	cred     *credential.Credential
	ics      ICSRenderer // nil disables attachments
	duration time.Duration
	authURL  string
	now      func() time.Time
	logger   *logrus.Entry
}

type AssistantOption func(*AssistantService)

// WithICS attaches an .ics file to meeting confirmations.
func WithICS(r ICSRenderer) AssistantOption {
	return func(s *AssistantService) { s.ics = r }
}

// WithClock replaces the wall clock used as the reference instant.
func WithClock(now func() time.Time) AssistantOption {
	return func(s *AssistantService) { s.now = now }
}

func NewAssistantService(
	resolver *schedule.Resolver,
	calendar meeting.Calendar,
	tasks task.List,
	cred *credential.Credential,
	duration time.Duration,
	authURL string,
	logger *logrus.Entry,
	opts ...AssistantOption,
) *AssistantService {
	s := &AssistantService{
		resolver: resolver,
		calendar: calendar,
		tasks:    tasks,
		cred:     cred,
		duration: duration,
		authURL:  authURL,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one chat message. It never returns an error: every failure is
// logged and turned into an apology.
func (s *AssistantService) Handle(ctx context.Context, text string) Reply {
	text = strings.TrimSpace(text)
	folded := schedule.Fold(text)

	if rest, ok := folded.TrimPrefix(taskPrefix); ok {
		return s.addTask(ctx, strings.TrimSpace(rest))
	}
	if rest, ok := folded.TrimPrefix(meetingPrefix); ok {
		return s.createMeeting(ctx, strings.TrimSpace(rest))
	}

	s.logger.WithField("text_length", len(text)).Info("Unrecognized command")
	return textReply(MsgUnknownCommand)
}

// Help is the usage text for /start and /help.
func (s *AssistantService) Help() string {
	var b strings.Builder
	b.WriteString("Hola, soy tu asistente personal. Puedo:\n\n")
	b.WriteString("• Agregar tarea: <texto>\n  Crea una tarea en Google Tasks. Si mencionas una fecha, la uso como vencimiento.\n  Ej: Agregar tarea: pagar la luz el viernes\n\n")
	b.WriteString("• Crear reunión: <texto con fecha y hora>\n  Crea un evento en Google Calendar")
	fmt.Fprintf(&b, " de %d minutos.\n  Ej: Crear reunión: equipo mañana a las 3pm\n", int(s.meetingDuration().Minutes()))
	if s.authURL != "" {
		fmt.Fprintf(&b, "\nPara conectar tu cuenta de Google abre %s", s.authURL)
	}
	return b.String()
}

func (s *AssistantService) meetingDuration() time.Duration {
	if s.duration <= 0 {
		return schedule.DefaultDuration
	}
	return s.duration
}

func (s *AssistantService) addTask(ctx context.Context, text string) Reply {
	logCtx := s.logger.WithField("command", "agregar_tarea")
	if text == "" {
		return textReply(MsgEmptyTitle)
	}
	if !s.cred.Authorized() {
		logCtx.Info("Task requested before authorization")
		return textReply(MsgNeedsAuth, s.authURL)
	}

	title, due := s.resolver.ResolveDue(text, s.now())
	t := &task.Task{Title: title, Due: due}
	if err := s.tasks.Insert(ctx, s.cred, t); err != nil {
		if errors.Is(err, credential.ErrNotAuthorized) {
			logCtx.WithError(err).Warn("Credential rejected while inserting task")
			return textReply(MsgNeedsAuth, s.authURL)
		}
		logCtx.WithError(err).Error("Failed to insert task")
		return textReply(MsgTaskFailed)
	}

	logCtx.WithFields(logrus.Fields{"task_id": t.ID, "has_due": due.IsPresent()}).Info("Task created")
	reply := fmt.Sprintf(MsgTaskCreated, t.Title)
	if d, ok := due.Get(); ok {
		reply += fmt.Sprintf(" (vence el %s)", d.In(s.resolver.Location()).Format(dateLayout))
	}
	return Reply{Text: reply}
}

func (s *AssistantService) createMeeting(ctx context.Context, text string) Reply {
	logCtx := s.logger.WithField("command", "crear_reunion")
	if text == "" {
		return textReply(MsgEmptyTitle)
	}

	now := s.now()
	outcome := s.resolver.ResolveMeeting(text, now, s.meetingDuration())
	if !outcome.IsResolved() {
		entry := logCtx.WithField("reason", outcome.Reason.String())
		if outcome.Reason == schedule.InvalidCalendarDate {
			entry.Warn("Meeting text names an impossible date")
		} else {
			entry.Info("No date found in meeting text")
		}
		return textReply(MsgDateNotUnderstood)
	}

	if !s.cred.Authorized() {
		logCtx.Info("Meeting requested before authorization")
		return textReply(MsgNeedsAuth, s.authURL)
	}

	m := &meeting.Meeting{
		Title:    outcome.Title,
		Start:    outcome.Interval.Start,
		End:      outcome.Interval.End,
		Timezone: outcome.Interval.ZoneName(),
	}
	if err := s.calendar.CreateEvent(ctx, s.cred, m); err != nil {
		if errors.Is(err, credential.ErrNotAuthorized) {
			logCtx.WithError(err).Warn("Credential rejected while creating event")
			return textReply(MsgNeedsAuth, s.authURL)
		}
		logCtx.WithError(err).Error("Failed to create calendar event")
		return textReply(MsgMeetingFailed)
	}

	logCtx.WithFields(logrus.Fields{
		"event_id": m.ID,
		"start":    m.Start.Format(time.RFC3339),
		"end":      m.End.Format(time.RFC3339),
	}).Info("Meeting created")

	reply := textReply(MsgMeetingCreated, m.Title, m.Start.Format(dateLayout), m.Start.Format(clockLayout))
	if s.ics != nil {
		content, err := s.ics.Render(m, now)
		if err != nil {
			// The event exists; only the attachment is lost.
			logCtx.WithError(err).Warn("Failed to render .ics attachment")
			return reply
		}
		reply.Attachment = mo.Some(Attachment{FileName: MsgAttachmentName, MIME: MsgAttachmentMIME, Content: content})
	}
	return reply
}
