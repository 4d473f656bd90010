package file_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/logging/handler/file"
	"github.com/mogud/snowlog/core/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHandlerWritesEnabledLevels(t *testing.T) {
	dir := t.TempDir()
	opt := &file.Option{}
	file.DefaultOption(opt)
	opt.LogPath = dir
	opt.FileNameFormat = "app_%i.log"
	opt.DefaultLevels = logging.Event | logging.Error
	opt.Formatter = "JSON"

	h := file.NewHandler()
	h.Construct(option.Value(opt), logging.NewLogFormatterRepository())

	logger := logging.NewDefaultLogger("app/svc", h, nil)
	logger.Debugf("dropped")
	logger.Eventf("user %s signed in", "alice")
	logger.Warnf("dropped")
	logger.Errorf("failed: %d", 7)
	logger.Log(logging.Off, "dropped")

	name := h.FileName()
	h.Close()
	logger.Errorf("after close")

	assert.Equal(t, filepath.Join(dir, "app_0.log"), name)
	content, err := os.ReadFile(name)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"Event"`)
	assert.Contains(t, lines[0], "user alice signed in")
	assert.Contains(t, lines[1], `"level":"Error"`)
	assert.Contains(t, lines[1], `"file":`)
}

func TestFileHandlerSetLevels(t *testing.T) {
	dir := t.TempDir()
	opt := &file.Option{}
	file.DefaultOption(opt)
	opt.LogPath = dir
	opt.FileNameFormat = "app.log"
	opt.DefaultLevels = logging.Error

	h := file.NewHandler()
	h.Construct(option.Value(opt), logging.NewLogFormatterRepository())
	logger := logging.NewDefaultLogger("p", h, nil)

	logger.Infof("dropped")
	h.SetLevels(logging.Info)
	assert.Equal(t, logging.Info, h.Levels())
	logger.Infof("kept")
	h.Close()
	h.Close()

	content, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "\n"))
	assert.Contains(t, string(content), "kept")
}

func newRollingHandler(t *testing.T, format string, configure func(opt *file.Option)) (*file.Handler, string) {
	dir := t.TempDir()
	opt := &file.Option{}
	file.DefaultOption(opt)
	opt.LogPath = dir
	opt.FileNameFormat = format
	opt.FileLineLevels = logging.Off
	opt.DefaultLevels = logging.All
	opt.FileRollingIntervalSeconds = 60
	opt.Compress = true
	if configure != nil {
		configure(opt)
	}

	h := file.NewHandler()
	h.Construct(option.Value(opt), logging.NewLogFormatterRepository())
	return h, dir
}

func logAt(h *file.Handler, at time.Time, message string) {
	h.Log(&logging.LogData{
		Time:    at,
		Path:    "app",
		Level:   logging.Info,
		Message: func() string { return message },
	})
}

func readGzip(t *testing.T, name string) string {
	f, err := os.Open(name)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	bs, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(bs)
}

func TestFileHandlerRollsOnInterval(t *testing.T) {
	h, dir := newRollingHandler(t, "app_%i.log", nil)

	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	logAt(h, t0, "first")
	logAt(h, t0.Add(2*time.Minute), "second")
	h.Close()

	assert.NoFileExists(t, filepath.Join(dir, "app_0.log"))
	assert.Contains(t, readGzip(t, filepath.Join(dir, "app_0.log.gz")), "first")

	content, err := os.ReadFile(filepath.Join(dir, "app_1.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "second")
	assert.NotContains(t, string(content), "first")
}

func TestFileHandlerRollsOnTemplateChange(t *testing.T) {
	h, dir := newRollingHandler(t, "app_%02m_%i.log", nil)

	t0 := time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC)
	logAt(h, t0, "at five")
	logAt(h, t0.Add(2*time.Minute), "at seven")
	h.Close()

	assert.Contains(t, readGzip(t, filepath.Join(dir, "app_05_0.log.gz")), "at five")
	assert.NoFileExists(t, filepath.Join(dir, "app_05_1.log"))

	content, err := os.ReadFile(filepath.Join(dir, "app_07_0.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "at seven")
}

func TestFileHandlerRollsOnSize(t *testing.T) {
	h, dir := newRollingHandler(t, "app_%i.log", func(opt *file.Option) {
		opt.FileRollingMegabytes = 1
		opt.FileRollingIntervalSeconds = 3600
		opt.Compress = false
	})

	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	first := filepath.Join(dir, "app_0.log")
	logAt(h, t0, strings.Repeat("x", 1024*1024+1))
	require.Eventually(t, func() bool {
		stat, err := os.Stat(first)
		return err == nil && stat.Size() > 1024*1024
	}, 5*time.Second, 10*time.Millisecond)

	// 同一滚动周期内，超过刷新间隔后检查文件大小
	logAt(h, t0.Add(20*time.Second), "small")
	h.Close()

	content, err := os.ReadFile(filepath.Join(dir, "app_1.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "small")
	assert.FileExists(t, first)
}
