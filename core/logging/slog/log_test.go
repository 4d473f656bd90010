package slog_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/logging/handler/compound"
	"github.com/mogud/snowlog/core/logging/handler/console"
	"github.com/mogud/snowlog/core/logging/slog"
	"github.com/mogud/snowlog/core/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	lock   sync.Mutex
	levels []logging.LogLevel
	paths  []string
}

func (ss *recorder) Log(data *logging.LogData) {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	ss.levels = append(ss.levels, data.Level)
	ss.paths = append(ss.paths, data.Path)
}

func TestGlobalLogger(t *testing.T) {
	slog.BindGlobalLogger(nil)
	r := &recorder{}
	slog.BindGlobalHandler(r)
	assert.Same(t, r, slog.Handler())

	slog.Debugf("d")
	slog.Infof("i")
	slog.Eventf("e")
	slog.Warnf("w")
	slog.Errorf("e")

	assert.Equal(t, []logging.LogLevel{
		logging.Debug, logging.Info, logging.Event, logging.Warn, logging.Error,
	}, r.levels)
	assert.Equal(t, "Global", r.paths[0])

	other := &recorder{}
	slog.BindGlobalLogger(logging.NewDefaultLogger("custom", other, nil))
	slog.Infof("x")
	assert.Equal(t, []string{"custom"}, other.paths)
	assert.Len(t, r.levels, 5)
}

func TestBindHandlerKeepsBoundLogger(t *testing.T) {
	custom := &recorder{}
	slog.BindGlobalLogger(logging.NewDefaultLogger("custom", custom, nil))

	replaced := &recorder{}
	slog.BindGlobalHandler(replaced)
	slog.Warnf("still custom")

	assert.Equal(t, []string{"custom"}, custom.paths)
	assert.Empty(t, replaced.paths)
	assert.Same(t, replaced, slog.Handler())
}

func TestGlobalFileLine(t *testing.T) {
	slog.BindGlobalLogger(nil)

	out := &bytes.Buffer{}
	h := console.NewHandler()
	h.SetOutput(out, out)
	h.Construct(option.Value(&console.Option{
		Formatter:      "Default",
		FileLineLevels: logging.Warn,
		DefaultLevels:  logging.All,
	}), logging.NewLogFormatterRepository())
	slog.BindGlobalHandler(compound.NewHandler(h))

	slog.Warnf("where")

	line := strings.TrimSpace(out.String())
	require.NotEmpty(t, line)
	assert.Contains(t, line, "log_test.go(")
	assert.NotContains(t, line, "logger_default.go")
	assert.NotContains(t, line, "slog/log.go")
}
