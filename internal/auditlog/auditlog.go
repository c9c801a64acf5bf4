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

// Package auditlog is an append-only, ring-bounded record of every
// approval decision, policy override, and sandboxed tool execution. Any
// goroutine may append without holding a lock: entries are serialized
// through a single channel-fed writer goroutine, the same single-writer
// discipline the teacher applies to its own pubsub event broker, so
// concurrent producers never contend over a mutex on the hot path.
package auditlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/google/uuid"

	"github.com/loomware/warp/internal/log"
	"go.uber.org/zap"
)

// DefaultMaxEntries is the ring buffer size before pruning, per
// SPEC_FULL.md §4.J.
const DefaultMaxEntries = 50_000

// DefaultPrunePercent is the fraction of oldest entries dropped once
// MaxEntries is exceeded.
const DefaultPrunePercent = 20

// DefaultMaxFileBytes rotates the on-disk audit log once its active
// segment crosses this size, so a long-running session's audit trail
// doesn't grow into one unbounded file.
const DefaultMaxFileBytes = 10 * 1024 * 1024

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	SessionID string    `json:"session_id"`
	IPAddress string    `json:"ip_address,omitempty"`
}

// Log is the append-only audit log. Create one per process with New and
// call Close when the process shuts down to flush and release its file.
type Log struct {
	sessionID string

	mu           sync.RWMutex
	ring         []Entry
	maxEntries   int
	prunePercent int

	entries chan Entry
	done    chan struct{}

	path         string
	maxFileBytes int64
	file         *os.File
	w            *bufio.Writer
	written      int64
}

// New creates a Log. path == "" disables on-disk persistence (in-memory
// ring only, useful for tests). maxEntries <= 0 uses DefaultMaxEntries.
func New(maxEntries, prunePercent int, path string) (*Log, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if prunePercent <= 0 {
		prunePercent = DefaultPrunePercent
	}

	l := &Log{
		sessionID:    uuid.New().String(),
		maxEntries:   maxEntries,
		prunePercent: prunePercent,
		entries:      make(chan Entry, 256),
		done:         make(chan struct{}),
	}

	l.path = path
	l.maxFileBytes = DefaultMaxFileBytes

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, err
		}
		if info, err := f.Stat(); err == nil {
			l.written = info.Size()
		}
		l.file = f
		l.w = bufio.NewWriter(f)
	}

	go l.run()
	return l, nil
}

// SessionID is the ID tagging every entry this Log appends.
func (l *Log) SessionID() string { return l.sessionID }

// Append enqueues an entry for the writer goroutine. Never blocks the
// caller beyond the channel buffer: a full buffer means the writer is
// behind, and Append still completes (it only blocks briefly) rather than
// dropping the entry silently.
func (l *Log) Append(actor, action, details string) {
	l.entries <- Entry{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		SessionID: l.sessionID,
	}
}

// AppendWithIP is Append plus a caller-supplied IP address, for entries
// originating from a future remote approval surface.
func (l *Log) AppendWithIP(actor, action, details, ip string) {
	l.entries <- Entry{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		SessionID: l.sessionID,
		IPAddress: ip,
	}
}

func (l *Log) run() {
	defer close(l.done)
	for e := range l.entries {
		l.mu.Lock()
		l.ring = append(l.ring, e)
		if len(l.ring) > l.maxEntries {
			drop := len(l.ring) * l.prunePercent / 100
			if drop < 1 {
				drop = 1
			}
			l.ring = append([]Entry(nil), l.ring[drop:]...)
		}
		l.mu.Unlock()

		if l.w != nil {
			data, err := json.Marshal(e)
			if err != nil {
				log.Warn("auditlog: failed to marshal entry", zap.Error(err))
				continue
			}
			if _, err := l.w.Write(data); err != nil {
				log.Warn("auditlog: failed to write entry", zap.Error(err))
				continue
			}
			_ = l.w.WriteByte('\n')
			_ = l.w.Flush()
			l.written += int64(len(data)) + 1

			if l.written >= l.maxFileBytes {
				if err := l.rotate(); err != nil {
					log.Warn("auditlog: rotation failed", zap.Error(err))
				}
			}
		}
	}
}

// rotate archives the current log file under a timestamped .gz name and
// reopens a fresh file at l.path. Rotation failures are logged, not fatal:
// the writer keeps appending to whatever file handle it already holds.
func (l *Log) rotate() error {
	if l.file == nil {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		return err
	}
	if err := l.file.Close(); err != nil {
		return err
	}

	src, err := os.Open(l.path)
	if err != nil {
		return err
	}
	defer src.Close()

	archivePath := fmt.Sprintf("%s.%d.gz", l.path, time.Now().UnixNano())
	dst, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		dst.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	l.file = f
	l.w = bufio.NewWriter(f)
	l.written = 0
	return nil
}

// Entries returns a snapshot of every retained entry, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.ring))
	copy(out, l.ring)
	return out
}

// Len returns the number of entries currently retained in memory.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ring)
}

// Close stops accepting new entries, drains the writer goroutine, and
// closes the underlying file if one was opened.
func (l *Log) Close() error {
	close(l.entries)
	<-l.done
	if l.file != nil {
		if l.w != nil {
			_ = l.w.Flush()
		}
		return l.file.Close()
	}
	return nil
}
