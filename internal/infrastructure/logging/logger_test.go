package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerBackends(t *testing.T) {
	for _, backend := range []string{"zap", "zerolog", ""} {
		l, err := NewLogger(&LoggerConfig{Logger: backend, Level: "error", Encoding: "json"})
		require.NoError(t, err, backend)
		l.Debug(General, Startup, "hidden below error level", nil)
	}

	_, err := NewLogger(&LoggerConfig{Logger: "logrus"})
	assert.Error(t, err)
}

func TestPrepareLogInfoAddsCategories(t *testing.T) {
	params := prepareLogInfo(Store, Membership, map[ExtraKey]any{UserID: "u1"})

	got := map[string]any{}
	for i := 0; i < len(params); i += 2 {
		got[params[i].(string)] = params[i+1]
	}

	assert.Equal(t, Store, got["Category"])
	assert.Equal(t, Membership, got["SubCategory"])
	assert.Equal(t, "u1", got["UserId"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info(General, Startup, "ignored", map[ExtraKey]any{Path: "/"})
	l.Errorf("ignored %d", 1)
	assert.NoError(t, l.Sync())
}
