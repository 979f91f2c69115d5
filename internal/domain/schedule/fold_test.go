package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	f := Fold("Reunión MAÑANA a las 3")
	assert.Equal(t, "reunion manana a las 3", f.Text)
	assert.Equal(t, "MAÑANA", f.Original(8, 14))
}

func TestFold_TrimPrefix(t *testing.T) {
	rest, ok := Fold("Crear Reunión: Demo 3pm").TrimPrefix("crear reunion:")
	require.True(t, ok)
	assert.Equal(t, " Demo 3pm", rest)

	_, ok = Fold("agregar tarea: x").TrimPrefix("crear reunion:")
	assert.False(t, ok)
}

func TestFold_NonBreakingSpace(t *testing.T) {
	f := Fold("mañana\u00a0a las 3")
	assert.Equal(t, "manana a las 3", f.Text)
}
