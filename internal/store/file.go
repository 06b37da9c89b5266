package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// FileStore keeps marks in a single JSON file. The in-memory copy is the
// authority inside the process; every write updates one key under the lock
// and then replaces the file atomically, so a crash never leaves a torn file.
type FileStore struct {
	path  string
	mu    sync.Mutex
	marks map[string]map[string]int64
}

// fileDoc is the on-disk layout.
type fileDoc struct {
	Marks map[string]map[string]int64 `json:"marks"`
}

// corruptSuffix is appended to a mark file that could not be parsed.
const corruptSuffix = ".corrupt"

// NewFileStore opens the mark file at path. A missing file starts empty.
// Marks fail open: an unreadable file is logged and ignored, and a corrupt
// one is moved to path+".corrupt" so the next write starts a clean file.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating mark directory: %w", err)
	}

	fs := &FileStore{path: path, marks: make(map[string]map[string]int64)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		slog.Warn("mark file unreadable, starting with no marks", "path", path, "error", err)
		return fs, nil
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		aside := path + corruptSuffix
		slog.Warn("mark file corrupt, starting with no marks", "path", path, "moved_to", aside, "error", err)
		if err := os.Rename(path, aside); err != nil {
			return nil, fmt.Errorf("moving corrupt mark file aside: %w", err)
		}
		return fs, nil
	}
	if doc.Marks != nil {
		fs.marks = doc.Marks
	}
	return fs, nil
}

// LoadMarks returns every mark in bucket.
func (f *FileStore) LoadMarks(_ context.Context, bucket string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := maps.Clone(f.marks[bucket])
	if out == nil {
		out = make(map[string]int64)
	}
	return out, nil
}

// UpsertMark sets one mark and persists.
func (f *FileStore) UpsertMark(_ context.Context, bucket, itemID string, atMs int64) error {
	return f.mutate(bucket, func(b map[string]int64) {
		b[itemID] = atMs
	})
}

// UpsertMarks sets several marks and persists once.
func (f *FileStore) UpsertMarks(_ context.Context, bucket string, marks map[string]int64) error {
	if len(marks) == 0 {
		return nil
	}
	return f.mutate(bucket, func(b map[string]int64) {
		maps.Copy(b, marks)
	})
}

// ResetMarks empties a bucket and persists.
func (f *FileStore) ResetMarks(_ context.Context, bucket string) error {
	return f.mutate(bucket, func(b map[string]int64) {
		clear(b)
	})
}

// mutate applies fn to a copy of the bucket, writes the file, and only then
// swaps the copy in, so a failed write leaves memory and disk agreeing.
func (f *FileStore) mutate(bucket string, fn func(map[string]int64)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.marks[bucket])
	if next == nil {
		next = make(map[string]int64)
	}
	fn(next)

	prev, had := f.marks[bucket]
	f.marks[bucket] = next

	data, err := json.Marshal(fileDoc{Marks: f.marks})
	if err == nil {
		err = atomic.WriteFile(f.path, bytes.NewReader(data))
	}
	if err != nil {
		if had {
			f.marks[bucket] = prev
		} else {
			delete(f.marks, bucket)
		}
		return fmt.Errorf("writing mark file %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (f *FileStore) Close() error { return nil }

var _ MarkStore = (*FileStore)(nil)
