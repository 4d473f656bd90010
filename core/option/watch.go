package option

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Watch 监听所有文件配置源，文件写入或创建后重载
//
//	监听的是文件所在目录，编辑器以重命名方式保存时同样生效
func (ss *Repository) Watch(ctx context.Context) error {
	paths := ss.filePaths()
	if len(paths) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}

	watched := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watch file(%v): %w", p, err)
		}
		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err = watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("cannot watch path(%v): %w", dir, err)
		}
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil {
					continue
				}
				if _, ok := watched[abs]; !ok {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDelay, func() {
					if err := ss.Reload(); err != nil {
						ss.reportError(err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				ss.reportError(fmt.Errorf("file watcher error: %w", err))
			}
		}
	}()
	return nil
}
