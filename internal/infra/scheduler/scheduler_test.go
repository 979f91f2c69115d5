package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeSweeper struct {
	calls   int
	removed int
	left    int
}

func (f *fakeSweeper) CleanupExpired() int {
	f.calls++
	return f.removed
}

func (f *fakeSweeper) Len() int { return f.left }

type fakeKeeper struct {
	authorized bool
	err        error
	calls      int
}

func (f *fakeKeeper) Authorized() bool { return f.authorized }

func (f *fakeKeeper) Token(context.Context) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)}, nil
}

func newTestScheduler(sweepers map[string]Sweeper, keeper TokenKeeper, specs ...string) (*MaintenanceScheduler, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	dedupSpec, refreshSpec := "*/10 * * * *", "0 */6 * * *"
	if len(specs) == 2 {
		dedupSpec, refreshSpec = specs[0], specs[1]
	}
	return NewMaintenanceScheduler(sweepers, keeper, logrus.NewEntry(logger), time.UTC, dedupSpec, refreshSpec), hook
}

func TestStartAndStop(t *testing.T) {
	s, _ := newTestScheduler(nil, nil)

	require.NoError(t, s.Start())
	assert.Len(t, s.cronEngine.Entries(), 2)
	s.Stop()
}

func TestStart_InvalidSpec(t *testing.T) {
	s, _ := newTestScheduler(nil, nil, "every now and then", "0 */6 * * *")
	assert.Error(t, s.Start())

	s, _ = newTestScheduler(nil, nil, "*/10 * * * *", "@sometimes")
	assert.Error(t, s.Start())
}

func TestSweep(t *testing.T) {
	updates, states := &fakeSweeper{removed: 3, left: 7}, &fakeSweeper{}
	s, hook := newTestScheduler(map[string]Sweeper{"updates": updates, "oauth_states": states}, nil)

	s.sweep()

	assert.Equal(t, 1, updates.calls)
	assert.Equal(t, 1, states.calls)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "updates", entry.Data["cache"])
	assert.Equal(t, 3, entry.Data["removed"])
	assert.Equal(t, 7, entry.Data["remaining"])
}

func TestRefreshToken(t *testing.T) {
	t.Run("skips unauthorized credential", func(t *testing.T) {
		keeper := &fakeKeeper{}
		s, _ := newTestScheduler(nil, keeper)

		s.refreshToken()
		assert.Zero(t, keeper.calls)
	})

	t.Run("refreshes authorized credential", func(t *testing.T) {
		keeper := &fakeKeeper{authorized: true}
		s, hook := newTestScheduler(nil, keeper)

		s.refreshToken()
		assert.Equal(t, 1, keeper.calls)
		assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	})

	t.Run("logs failures", func(t *testing.T) {
		keeper := &fakeKeeper{authorized: true, err: errors.New("invalid_grant")}
		s, hook := newTestScheduler(nil, keeper)

		s.refreshToken()
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	})

	t.Run("nil keeper", func(t *testing.T) {
		s, _ := newTestScheduler(nil, nil)
		assert.NotPanics(t, s.refreshToken)
	})
}
