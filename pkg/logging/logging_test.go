package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_DefaultWhenMissing(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestIntoContext_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")
	ctx := IntoContext(context.Background(), l)

	FromContext(ctx).Info("cart_loaded", "lines", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cart_loaded", line["msg"])
	assert.EqualValues(t, 2, line["lines"])
}

func TestNewWithWriter_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
		warnSeen  bool
	}{
		{level: "debug", debugSeen: true, infoSeen: true, warnSeen: true},
		{level: "", debugSeen: false, infoSeen: true, warnSeen: true},
		{level: "WARN", debugSeen: false, infoSeen: false, warnSeen: true},
		{level: "error", debugSeen: false, infoSeen: false, warnSeen: false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := NewWithWriter(&buf, tt.level)
			ctx := context.Background()

			assert.Equal(t, tt.debugSeen, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoSeen, l.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.warnSeen, l.Enabled(ctx, slog.LevelWarn))
		})
	}
}
