package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/option"
)

var _ logging.ILogHandler = (*Handler)(nil)

type Option struct {
	Formatter      string                      `koanf:"Formatter"`
	FileLineLevels logging.LogLevel            `koanf:"FileLineLevels"` // 需要记录调用位置的级别
	ErrorLevels    logging.LogLevel            `koanf:"ErrorLevels"`    // 输出到 stderr 的级别
	Filter         map[string]logging.LogLevel `koanf:"Filter"`
	DefaultLevels  logging.LogLevel            `koanf:"DefaultLevels"`
}

func DefaultOption(o *Option) {
	o.Formatter = "Color"
	o.FileLineLevels = logging.Warn | logging.Error
	o.ErrorLevels = logging.Error
	o.DefaultLevels = logging.AtLeast(logging.Info)
}

type Handler struct {
	lock      sync.Mutex
	writeLock sync.Mutex
	option    *Option
	filter    *logging.Filter
	formatter func(logData *logging.LogData) string
	stdout    io.Writer
	stderr    io.Writer
}

func NewHandler() *Handler {
	opt := &Option{}
	DefaultOption(opt)

	handler := &Handler{
		formatter: logging.ColorLogFormatter,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
	handler.apply(opt)
	return handler
}

// SetOutput 替换输出目标，nil 表示保持不变
func (ss *Handler) SetOutput(stdout, stderr io.Writer) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if stdout != nil {
		ss.stdout = stdout
	}
	if stderr != nil {
		ss.stderr = stderr
	}
}

func (ss *Handler) Construct(opt *option.Option[Option], repo *logging.LogFormatterContainer) {
	ss.lock.Lock()
	ss.formatter = formatterOf(opt.Get(), repo)
	ss.apply(opt.Get())
	ss.lock.Unlock()

	opt.OnChanged(func() {
		newOption := opt.Get()

		ss.lock.Lock()
		defer ss.lock.Unlock()

		ss.formatter = formatterOf(newOption, repo)
		ss.apply(newOption)
	})
}

func formatterOf(opt *Option, repo *logging.LogFormatterContainer) func(logData *logging.LogData) string {
	if repo != nil {
		if f := repo.GetFormatter(opt.Formatter); f != nil {
			return f
		}
	}
	return logging.ColorLogFormatter
}

// apply 需在持有锁时调用
func (ss *Handler) apply(opt *Option) {
	checked := *opt
	ss.option = &checked
	ss.filter = logging.NewFilter(checked.Filter, checked.DefaultLevels)
}

func (ss *Handler) Levels() logging.LogLevel {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	return ss.option.DefaultLevels
}

// SetLevels 修改默认级别集合，前缀过滤保持不变
func (ss *Handler) SetLevels(levels logging.LogLevel) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	opt := *ss.option
	opt.DefaultLevels = levels
	ss.apply(&opt)
}

func (ss *Handler) Log(logData *logging.LogData) {
	if logData.Level == logging.Off {
		return
	}

	ss.lock.Lock()
	curOption := ss.option
	filter := ss.filter
	formatter := ss.formatter
	stdout, stderr := ss.stdout, ss.stderr
	ss.lock.Unlock()

	if !filter.Enabled(logData.Path, logData.Level) {
		return
	}

	if curOption.FileLineLevels.Overlaps(logData.Level) {
		logData = logData.ResolveCaller()
	}

	message := formatter(logData)

	w := stdout
	if curOption.ErrorLevels.Overlaps(logData.Level) {
		w = stderr
	}

	ss.writeLock.Lock()
	_, _ = fmt.Fprintln(w, message)
	ss.writeLock.Unlock()
}
