package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutWritesToEveryHandler(t *testing.T) {
	var a, b bytes.Buffer
	h := fanout([]slog.Handler{
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	})

	slog.New(h).Info("goal saved", "goal_id", 7)

	assert.Contains(t, a.String(), "goal_id=7")
	assert.Contains(t, b.String(), `"goal_id":7`)
}

func TestFanoutSingleHandlerIsUnwrapped(t *testing.T) {
	h := slog.NewTextHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, fanout([]slog.Handler{h}))
}

func TestInitWithoutSentry(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	flush := Init(true, "", "test")
	require.NotNil(t, flush)
	flush()

	assert.True(t, Log.Enabled(context.Background(), slog.LevelDebug))
}
