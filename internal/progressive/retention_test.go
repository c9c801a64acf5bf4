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
	"testing"
	"time"
)

func TestCheckpointStore_PruneRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCheckpointStore(dir)
	if err != nil {
		t.Fatalf("NewCheckpointStore: %v", err)
	}

	old, err := store.New("stale-chunk")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fresh, err := store.New("fresh-chunk")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	oldTime := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, old.ID+".json"), oldTime, oldTime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	pruned, err := store.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned checkpoint, got %d", pruned)
	}

	if _, err := os.Stat(filepath.Join(dir, old.ID+".json")); !os.IsNotExist(err) {
		t.Errorf("expected stale checkpoint file to be removed, stat err: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, fresh.ID+".json")); err != nil {
		t.Errorf("expected fresh checkpoint file to survive: %v", err)
	}

	if _, err := store.Load(old.ID); err == nil {
		t.Error("expected pruned checkpoint to be evicted from the cache")
	}
}

func TestStartRetentionJob_InvalidSpecErrors(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCheckpointStore(dir)
	if err != nil {
		t.Fatalf("NewCheckpointStore: %v", err)
	}
	if _, err := StartRetentionJob(store, time.Hour, "not a cron spec"); err == nil {
		t.Error("expected an error for a malformed cron spec")
	}
}
