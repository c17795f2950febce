package logging

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{name: "debug level with text format", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info level with json format", level: "info", format: "json", expectLevel: logrus.InfoLevel},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.Level())

			if tt.format == "json" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestNewLogrusAdapterWithOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldCategory, "Dining").Debug("predicted")

	out := buf.String()
	assert.Contains(t, out, `"msg":"predicted"`)
	assert.Contains(t, out, `"category":"Dining"`)
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	logger := NewLogrusAdapterFromLogger(logrusLogger)
	logger.
		WithField(FieldOperation, "train").
		WithFields(Field{Key: FieldCount, Value: 3}).
		WithError(errors.New("disk full")).
		Error("training failed")

	out := buf.String()
	assert.Contains(t, out, "training failed")
	assert.Contains(t, out, "operation=train")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "disk full")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: 42},
	})
	assert.Len(t, fields, 2)
	assert.Equal(t, 42, fields["key2"])
	assert.Len(t, convertFields(nil), 0)
}

func TestDefault(t *testing.T) {
	mock := NewMockLogger()
	SetDefault(mock)
	assert.Same(t, mock, Default())
	assert.Same(t, mock, OrDefault(nil))

	other := NewMockLogger()
	assert.Same(t, other, OrDefault(other))

	SetDefault(nil)
	assert.Same(t, mock, Default(), "nil must not replace the default")
}

func TestMockLogger_SharedSink(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldStrategy, "Keyword")
	child.WithError(errors.New("boom")).Warn("fallback")
	mock.Info("done")

	entries := mock.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, []Field{{Key: FieldStrategy, Value: "Keyword"}}, entries[0].Fields)
	assert.EqualError(t, entries[0].Error, "boom")
	assert.True(t, mock.HasEntry("INFO", "done"))
	assert.Len(t, mock.GetEntriesByLevel("WARN"), 1)

	mock.Clear()
	assert.Empty(t, mock.GetEntries())
}

func TestMockLogger_Concurrent(t *testing.T) {
	mock := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mock.WithField("i", 1).Debug("tick")
		}()
	}
	wg.Wait()
	assert.Len(t, mock.GetEntries(), 50)
}

func TestImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
