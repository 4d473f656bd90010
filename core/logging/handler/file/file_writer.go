package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/mogud/snowlog/core/task"
)

type writerElement struct {
	File    string
	Message string
}

type writer struct {
	fileName string
	file     *os.File
	compress bool

	compressing sync.WaitGroup
	done        chan struct{}
}

func newWriter(c <-chan *writerElement, compress bool) *writer {
	w := &writer{
		compress: compress,
		done:     make(chan struct{}),
	}
	task.Execute(func() { w.loop(c) })
	return w
}

// wait 等待通道关闭后的写入与压缩全部完成
func (ss *writer) wait() {
	<-ss.done
	ss.compressing.Wait()
}

func (ss *writer) loop(c <-chan *writerElement) {
	defer close(ss.done)
	defer func() {
		if ss.file != nil {
			_ = ss.file.Close()
		}
	}()

	for unit := range c {
		if ss.fileName == unit.File {
			_, _ = fmt.Fprintln(ss.file, unit.Message)
			continue
		}

		_ = os.MkdirAll(filepath.Dir(unit.File), 0755)

		f, err := os.OpenFile(unit.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "### ERROR ### log to file <%s>: %s\n", unit.File, err.Error())
			continue
		}

		if ss.file != nil {
			_ = ss.file.Close()
			if ss.compress {
				rolled := ss.fileName
				ss.compressing.Add(1)
				task.Execute(func() {
					defer ss.compressing.Done()
					if err := compressFile(rolled); err != nil {
						_, _ = fmt.Fprintf(os.Stderr, "### ERROR ### compress log file <%s>: %s\n", rolled, err.Error())
					}
				})
			}
		}

		ss.file = f
		ss.fileName = unit.File
		_, _ = fmt.Fprintln(f, unit.Message)
	}
}

// compressFile 将 path 压缩为 path.gz 并删除原文件
func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	zw, err := gzip.NewWriterLevel(dst, gzip.BestSpeed)
	if err != nil {
		_ = dst.Close()
		return err
	}
	zw.Name = filepath.Base(path)

	if _, err = io.Copy(zw, src); err != nil {
		_ = zw.Close()
		_ = dst.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		_ = dst.Close()
		return err
	}
	if err = dst.Close(); err != nil {
		return err
	}
	_ = src.Close()
	return os.Remove(path)
}
