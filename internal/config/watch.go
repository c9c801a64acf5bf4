// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/loomware/warp/internal/log"
	"go.uber.org/zap"
)

// defaultReloadDebounce absorbs the burst of write+rename events a single
// editor save produces, the same debounce window the teacher's pattern
// library hot-reloader uses.
const defaultReloadDebounce = 300 * time.Millisecond

// Watcher reloads Config from its source file whenever that file changes
// on disk and passes the result to onChange. The Watcher applies nothing
// itself: what a reloaded Config changes is up to onChange.
type Watcher struct {
	fw       *fsnotify.Watcher
	v        *viper.Viper
	onChange func(*Config, error)

	mu    sync.Mutex
	timer *time.Timer

	stop chan struct{}
	done chan struct{}
}

// WatchConfig starts watching the file Load most recently read and invokes
// onChange with the freshly reloaded Config (or the reload error) after
// each settled burst of changes. Returns a Watcher the caller must Close.
func WatchConfig(v *viper.Viper, onChange func(*Config, error)) (*Watcher, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		return nil, nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:       fw,
		v:        v,
		onChange: onChange,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run(path)
	return w, nil
}

func (w *Watcher) run(path string) {
	defer close(w.done)
	base := filepath.Base(path)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			w.debounce(path)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", zap.Error(err))
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(defaultReloadDebounce, func() {
		cfg, err := Load(w.v, path)
		w.onChange(cfg, err)
	})
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	close(w.stop)
	<-w.done
	return w.fw.Close()
}
