package telegram

import (
	"context"
	"errors"
	"io"
	"testing"

	"personal_assistant_bot/internal/app"
	"personal_assistant_bot/internal/infra/dedup"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

// fakeContext implements the few telebot.Context methods the handlers use;
// anything else panics through the nil embedded interface.
type fakeContext struct {
	telebot.Context
	update  telebot.Update
	sent    []interface{}
	sendErr error
}

func newFakeContext(updateID int, senderID int64, text string) *fakeContext {
	return &fakeContext{update: telebot.Update{
		ID: updateID,
		Message: &telebot.Message{
			Sender: &telebot.User{ID: senderID},
			Chat:   &telebot.Chat{ID: senderID},
			Text:   text,
		},
	}}
}

func (f *fakeContext) Update() telebot.Update { return f.update }
func (f *fakeContext) Sender() *telebot.User  { return f.update.Message.Sender }
func (f *fakeContext) Chat() *telebot.Chat    { return f.update.Message.Chat }
func (f *fakeContext) Text() string           { return f.update.Message.Text }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, what)
	return nil
}

type fakeAssistant struct {
	reply app.Reply
	got   []string
}

func (f *fakeAssistant) Handle(_ context.Context, text string) app.Reply {
	f.got = append(f.got, text)
	return f.reply
}

func (f *fakeAssistant) Help() string { return "ayuda" }

func nullEntry() *logrus.Entry {
	logger, _ := logtest.NewNullLogger()
	return logrus.NewEntry(logger)
}

func TestTextHandler_SendsReply(t *testing.T) {
	assistant := &fakeAssistant{reply: app.Reply{Text: "📝 Tarea creada: comprar leche"}}
	c := newFakeContext(1, 7, "agregar tarea: comprar leche")

	require.NoError(t, textHandler(context.Background(), assistant, nullEntry())(c))

	assert.Equal(t, []string{"agregar tarea: comprar leche"}, assistant.got)
	assert.Equal(t, []interface{}{"📝 Tarea creada: comprar leche"}, c.sent)
}

func TestTextHandler_SendsAttachment(t *testing.T) {
	assistant := &fakeAssistant{reply: app.Reply{
		Text:       "📅 Reunión creada",
		Attachment: mo.Some(app.Attachment{FileName: "reunion.ics", MIME: "text/calendar", Content: []byte("BEGIN:VCALENDAR")}),
	}}
	c := newFakeContext(2, 7, "crear reunión: equipo mañana a las 3pm")

	require.NoError(t, textHandler(context.Background(), assistant, nullEntry())(c))

	require.Len(t, c.sent, 2)
	doc, ok := c.sent[1].(*telebot.Document)
	require.True(t, ok)
	assert.Equal(t, "reunion.ics", doc.FileName)
	assert.Equal(t, "text/calendar", doc.MIME)
	content, err := io.ReadAll(doc.File.FileReader)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(content))
}

func TestTextHandler_SendFailure(t *testing.T) {
	c := newFakeContext(3, 7, "hola")
	c.sendErr = errors.New("telegram: bot was blocked by the user")

	err := textHandler(context.Background(), &fakeAssistant{reply: app.Reply{Text: "x"}}, nullEntry())(c)
	assert.Error(t, err)
}

func TestHelpHandler(t *testing.T) {
	c := newFakeContext(4, 7, "/help")

	require.NoError(t, helpHandler(&fakeAssistant{}, nullEntry())(c))
	assert.Equal(t, []interface{}{"ayuda"}, c.sent)
}

func TestStartHandler(t *testing.T) {
	c := newFakeContext(5, 7, "/start")
	c.update.Message.Sender.FirstName = "Lucía"

	require.NoError(t, startHandler(&fakeAssistant{}, nullEntry())(c))
	assert.Equal(t, []interface{}{"¡Hola, Lucía! ayuda"}, c.sent)
}

func countingHandler(calls *int) telebot.HandlerFunc {
	return func(telebot.Context) error {
		*calls++
		return nil
	}
}

func TestDedup(t *testing.T) {
	var calls int
	h := Dedup(dedup.New(16, 0), nullEntry())(countingHandler(&calls))

	require.NoError(t, h(newFakeContext(100, 7, "hola")))
	require.NoError(t, h(newFakeContext(100, 7, "hola")))
	require.NoError(t, h(newFakeContext(101, 7, "hola")))

	assert.Equal(t, 2, calls)
}

func TestOwnerOnly(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	var calls int
	h := OwnerOnly(7, logrus.NewEntry(logger))(countingHandler(&calls))

	require.NoError(t, h(newFakeContext(1, 7, "hola")))
	require.NoError(t, h(newFakeContext(2, 8, "hola")))

	assert.Equal(t, 1, calls)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, int64(8), hook.LastEntry().Data["sender_id"])
}

func TestOwnerOnly_Disabled(t *testing.T) {
	var calls int
	h := OwnerOnly(0, nullEntry())(countingHandler(&calls))

	require.NoError(t, h(newFakeContext(1, 99, "hola")))
	assert.Equal(t, 1, calls)
}
