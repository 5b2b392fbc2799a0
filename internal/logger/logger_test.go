package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	Replace(slog.New(NewHandler(&buf)))
	t.Cleanup(func() {
		Replace(prev)
		_ = SetLevel("info")
	})

	require.NoError(t, SetLevel("info"))
	Debug(context.Background(), "hidden")
	Info(context.Background(), "shown", "recipe_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "recipe_id=7")
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("verbose"))
}

func TestReplacePanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { Replace(nil) })
}
