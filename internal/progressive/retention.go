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
package progressive

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/loomware/warp/internal/log"
	"go.uber.org/zap"
)

// DefaultCheckpointMaxAge is how long a completed checkpoint file survives
// on disk before the retention job reclaims it.
const DefaultCheckpointMaxAge = 7 * 24 * time.Hour

// Prune removes checkpoint files older than maxAge from the store's
// directory, clearing them from the in-memory cache too. A completed or
// failed run's checkpoints are safe to drop once nothing will resume from
// them; a fresh run just creates new ones.
func (s *CheckpointStore) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		s.mu.Lock()
		delete(s.cache, id)
		s.mu.Unlock()
		pruned++
	}
	return pruned, nil
}

// RetentionJob runs CheckpointStore.Prune on a cron schedule, the same
// cron.Cron-per-process pattern the teacher's workflow scheduler
// (pkg/scheduler/scheduler.go) drives its scheduled-workflow ticks with.
type RetentionJob struct {
	engine *cron.Cron
}

// StartRetentionJob schedules store's Prune(maxAge) on spec and returns a
// handle whose Stop ends the cron goroutine. spec is a standard 5-field
// cron expression, e.g. "0 3 * * *" for daily at 03:00.
func StartRetentionJob(store *CheckpointStore, maxAge time.Duration, spec string) (*RetentionJob, error) {
	engine := cron.New()
	_, err := engine.AddFunc(spec, func() {
		n, err := store.Prune(maxAge)
		if err != nil {
			log.Warn("checkpoint retention pass failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("pruned expired checkpoints", zap.Int("count", n))
		}
	})
	if err != nil {
		return nil, err
	}
	engine.Start()
	return &RetentionJob{engine: engine}, nil
}

// Stop ends the cron schedule and waits for any in-flight run to finish.
func (j *RetentionJob) Stop() {
	ctx := j.engine.Stop()
	<-ctx.Done()
}
