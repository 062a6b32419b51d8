package logger

import (
	"testing"

	"github.com/authsvc/auth-service/config"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   config.LogLevel
		want logging.Level
	}{
		{config.Debug, logging.DEBUG},
		{config.Info, logging.INFO},
		{config.Notice, logging.NOTICE},
		{config.Warn, logging.WARNING},
		{config.Error, logging.ERROR},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
