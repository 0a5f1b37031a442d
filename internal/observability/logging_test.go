package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextFieldsAccumulate(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b-1")
	ctx = WithStage(ctx, "parse")
	ctx = WithFile(ctx, "guide/start.md")

	assert.Equal(t, LogContext{BuildID: "b-1", Stage: "parse", File: "guide/start.md"}, GetContext(ctx))

	// Overwriting one field keeps the others.
	ctx = WithStage(ctx, "render")
	assert.Equal(t, "render", GetContext(ctx).Stage)
	assert.Equal(t, "b-1", GetContext(ctx).BuildID)

	assert.Empty(t, Attrs(context.Background()))
}

func TestLevelsCarryContext(t *testing.T) {
	buf := captureJSON(t)
	ctx := WithStage(WithBuildID(context.Background(), "b-2"), "write")

	tests := []struct {
		log   func(context.Context, string, ...slog.Attr)
		level string
	}{
		{DebugContext, "DEBUG"},
		{InfoContext, "INFO"},
		{WarnContext, "WARN"},
		{ErrorContext, "ERROR"},
	}
	for _, tt := range tests {
		buf.Reset()
		tt.log(ctx, "message", logfields.Count(3))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, tt.level, entry["level"])
		assert.Equal(t, "b-2", entry[logfields.KeyBuildID])
		assert.Equal(t, "write", entry[logfields.KeyStage])
		assert.InDelta(t, 3, entry[logfields.KeyCount], 0)
		assert.NotContains(t, entry, logfields.KeyFile)
	}
}
