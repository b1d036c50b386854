package testlog

import (
	"testing"

	"github.com/danmuck/skyframe/internal/logging"
	"github.com/rs/zerolog"
)

// Start configures the test logging profile and returns a logger tagged
// with the running test.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logger := logging.ConfigureTests().With().Str("test", t.Name()).Logger()
	logger.Debug().Msg("test start")
	return logger
}
