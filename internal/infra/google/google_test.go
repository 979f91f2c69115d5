package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"personal_assistant_bot/internal/domain/credential"
	"personal_assistant_bot/internal/domain/meeting"
	"personal_assistant_bot/internal/domain/task"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newAPIServer(t *testing.T, response string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		calls = append(calls, rec)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func validCredential() *credential.Credential {
	tok := &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	return credential.New("owner", &oauth2.Config{}, tok, nil)
}

func lima(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("-05", -5*3600)
}

func TestCalendar_CreateEvent(t *testing.T) {
	srv, calls := newAPIServer(t, `{"id":"evt-1","htmlLink":"https://calendar.google.com/event?eid=1"}`)
	cal := NewCalendar("primary", 100, option.WithEndpoint(srv.URL+"/calendar/v3/"))

	start := time.Date(2024, 6, 11, 15, 0, 0, 0, lima(t))
	m := &meeting.Meeting{Title: "equipo", Start: start, End: start.Add(time.Hour), Timezone: "America/Lima"}

	require.NoError(t, cal.CreateEvent(context.Background(), validCredential(), m))

	assert.Equal(t, "evt-1", m.ID)
	assert.Equal(t, "https://calendar.google.com/event?eid=1", m.Link)
	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/calendar/v3/calendars/primary/events", call.path)
	assert.Equal(t, "Bearer access-1", call.auth)
	assert.Equal(t, "equipo", call.body["summary"])
	assert.Equal(t, map[string]any{"dateTime": "2024-06-11T15:00:00-05:00", "timeZone": "America/Lima"}, call.body["start"])
	assert.Equal(t, map[string]any{"dateTime": "2024-06-11T16:00:00-05:00", "timeZone": "America/Lima"}, call.body["end"])
}

func TestCalendar_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	}))
	t.Cleanup(srv.Close)
	cal := NewCalendar("primary", 100, option.WithEndpoint(srv.URL+"/calendar/v3/"))

	m := &meeting.Meeting{Title: "x", Start: time.Now(), End: time.Now().Add(time.Hour)}
	err := cal.CreateEvent(context.Background(), validCredential(), m)
	assert.Error(t, err)
	assert.Empty(t, m.ID)
}

func TestCalendar_Unauthorized(t *testing.T) {
	cal := NewCalendar("", 100)
	cred := credential.New("owner", &oauth2.Config{}, nil, nil)

	err := cal.CreateEvent(context.Background(), cred, &meeting.Meeting{})
	assert.ErrorIs(t, err, credential.ErrNotAuthorized)
}

func TestTaskList_Insert(t *testing.T) {
	srv, calls := newAPIServer(t, `{"id":"task-1","title":"pagar la luz"}`)
	list := NewTaskList("@default", 100, option.WithEndpoint(srv.URL+"/"))

	due := time.Date(2024, 6, 14, 23, 30, 0, 0, lima(t))
	tk := &task.Task{Title: "pagar la luz", Due: mo.Some(due)}

	require.NoError(t, list.Insert(context.Background(), validCredential(), tk))

	assert.Equal(t, "task-1", tk.ID)
	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/tasks/v1/lists/@default/tasks", call.path)
	assert.Equal(t, "pagar la luz", call.body["title"])
	assert.Equal(t, "2024-06-14T00:00:00Z", call.body["due"], "civil date is kept even late in the day")
}

func TestTaskList_InsertWithoutDue(t *testing.T) {
	srv, calls := newAPIServer(t, `{"id":"task-2"}`)
	list := NewTaskList("", 100, option.WithEndpoint(srv.URL+"/"))

	require.NoError(t, list.Insert(context.Background(), validCredential(), &task.Task{Title: "comprar leche"}))

	require.Len(t, *calls, 1)
	_, hasDue := (*calls)[0].body["due"]
	assert.False(t, hasDue)
}

func TestTaskList_CancelledContext(t *testing.T) {
	list := NewTaskList("@default", 0.001)
	ctx, cancel := context.WithCancel(context.Background())

	// Consume the single burst token, then wait on a cancelled context.
	require.True(t, list.limiter.Allow())
	cancel()

	err := list.Insert(ctx, validCredential(), &task.Task{Title: "x"})
	assert.Error(t, err)
}

func TestDueDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, "2024-01-01T00:00:00Z", dueDate(time.Date(2024, 1, 1, 1, 0, 0, 0, tokyo)))
}
