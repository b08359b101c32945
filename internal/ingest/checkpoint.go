package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Checkpoint persists the ordinal of the last source record whose batch
// was committed to the vector index. The value counts scanned records,
// not upserted points, so records dropped during point construction
// still advance it.
type Checkpoint struct {
	path   string
	offset int64
}

// OpenCheckpoint loads the checkpoint file. A missing file means a fresh
// run with offset zero; an unreadable or corrupt file is an error, since
// guessing an offset could either re-ingest or silently skip records.
func OpenCheckpoint(path string) (*Checkpoint, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Checkpoint{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}

	offset, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("corrupt checkpoint %s: %q", path, strings.TrimSpace(string(raw)))
	}
	return &Checkpoint{path: path, offset: offset}, nil
}

// Offset returns the last committed source ordinal (0 on a fresh run).
func (c *Checkpoint) Offset() int64 { return c.offset }

// Commit durably records offset. Written to a sibling temp file, synced,
// then renamed over the live file so a crash never leaves a torn value.
func (c *Checkpoint) Commit(offset int64) error {
	if offset < c.offset {
		return fmt.Errorf("checkpoint moving backwards: %d -> %d", c.offset, offset)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir %s: %w", dir, err)
	}

	tmp := c.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", offset); err != nil {
		f.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("publish checkpoint: %w", err)
	}

	c.offset = offset
	return nil
}

// Reset removes the checkpoint file, forcing the next run to start fresh.
func (c *Checkpoint) Reset() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove checkpoint %s: %w", c.path, err)
	}
	c.offset = 0
	return nil
}
