package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildWindow(t *testing.T) {
	loc := lima(t)
	start := time.Date(2024, 6, 11, 20, 0, 0, 0, time.UTC)

	for _, d := range []time.Duration{time.Minute, 30 * time.Minute, time.Hour, 24 * time.Hour} {
		w := BuildWindow(start, d, loc)
		assert.Equal(t, d, w.End.Sub(w.Start))
		assert.True(t, w.Start.Equal(start), "zone must not move the instant")
		assert.Equal(t, loc, w.Start.Location())
		assert.Equal(t, loc, w.End.Location())
	}
}

func TestBuildWindow_Defaults(t *testing.T) {
	start := time.Date(2024, 6, 11, 15, 0, 0, 0, lima(t))

	w := BuildWindow(start, 0, nil)
	assert.Equal(t, DefaultDuration, w.Duration())
	assert.Equal(t, "America/Lima", w.ZoneName())
	assert.True(t, w.End.After(w.Start))
}
