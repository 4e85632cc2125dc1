package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch 监听目录，文件写入后重新入库，删除或改名后移除其分块
// 同一文件的连续事件在 debounce 内合并，阻塞直到 ctx 结束
func (i *Ingester) Watch(ctx context.Context, dir string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	i.log.Info("watching documents", zap.String("dir", dir))

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	schedule := func(path string, fn func()) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok && t.Stop() {
			wg.Done()
		}
		wg.Add(1)
		var t *time.Timer
		t = time.AfterFunc(debounce, func() {
			defer wg.Done()
			mu.Lock()
			if pending[path] != t {
				mu.Unlock()
				return
			}
			delete(pending, path)
			mu.Unlock()
			fn()
		})
		pending[path] = t
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := ev.Name
			if !Supported(path) {
				continue
			}

			switch {
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				schedule(path, func() {
					if _, err := i.IngestFile(ctx, path); err != nil {
						i.log.Warn("reindex failed", zap.String("path", path), zap.Error(err))
					}
				})
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				schedule(path, func() {
					n, err := i.DeleteSource(ctx, filepath.Base(path))
					if err != nil {
						i.log.Warn("failed to drop removed document", zap.String("path", path), zap.Error(err))
						return
					}
					i.log.Info("document removed", zap.String("path", path), zap.Int("chunks", n))
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				i.log.Warn("watch event overflow, some changes may be missed")
				continue
			}
			i.log.Warn("watch error", zap.Error(err))
		}
	}
}
