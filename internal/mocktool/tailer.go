package mocktool

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Tailer follows a MOCK_TOOL_LOG file and emits complete invocation records
// as mock tools append them. It uses fsnotify for change detection with a
// short poll as backup for missed events.
type Tailer struct {
	path    string
	watcher *fsnotify.Watcher

	mu  sync.Mutex
	err error
}

// NewTailer creates a Tailer for the given transcript log file. The file
// does not need to exist yet; the tailer waits for its creation.
func NewTailer(path string) (*Tailer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Tailer{path: path, watcher: watcher}, nil
}

// Records streams invocation records from the log file until the context is
// cancelled. The channel is closed on cancellation, watcher failure, or a
// malformed record; Err reports the failure after the channel closes.
// Partial records (a mock tool mid-write) are buffered until their END
// marker arrives.
func (t *Tailer) Records(ctx context.Context) <-chan Invocation {
	records := make(chan Invocation, 16)
	go t.tailLoop(ctx, records)
	return records
}

// Close releases the underlying watcher.
func (t *Tailer) Close() error {
	return t.watcher.Close()
}

// Err returns the error that stopped the tail loop, nil after a clean stop.
// A malformed record means a broken mock or a protocol mismatch; there is
// no recovery policy.
func (t *Tailer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Tailer) setErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.err = err
	}
}

func (t *Tailer) tailLoop(ctx context.Context, records chan<- Invocation) {
	defer close(records)

	if err := t.waitForFile(ctx); err != nil {
		return
	}

	if err := t.watcher.Add(t.path); err != nil {
		return
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var (
		offset  int64
		pending strings.Builder
		err     error
	)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if event.Name == t.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				if offset, err = t.drain(ctx, records, &pending, offset); err != nil {
					t.setErr(err)
					return
				}
			}
		case <-ticker.C:
			if offset, err = t.drain(ctx, records, &pending, offset); err != nil {
				t.setErr(err)
				return
			}
		case _, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			// Polling covers missed reads.
		}
	}
}

// waitForFile blocks until the log file exists, watching its parent
// directory for creation.
func (t *Tailer) waitForFile(ctx context.Context) error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	}

	parent := filepath.Dir(t.path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := t.watcher.Add(parent); err != nil {
		return fmt.Errorf("watching parent directory: %w", err)
	}
	defer t.watcher.Remove(parent)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-t.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if event.Name == t.path && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				return nil
			}
		case <-ticker.C:
			if _, err := os.Stat(t.path); err == nil {
				return nil
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// drain reads new content past offset, appends it to the pending buffer,
// and emits every complete record found. Returns the new offset; a parse
// error on a complete record is fatal and stops the tail loop.
func (t *Tailer) drain(ctx context.Context, records chan<- Invocation, pending *strings.Builder, offset int64) (int64, error) {
	file, err := os.Open(t.path)
	if err != nil {
		return offset, nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, nil
	}
	if info.Size() < offset {
		// Truncated; restart from the beginning.
		offset = 0
		pending.Reset()
	}
	if info.Size() == offset {
		return offset, nil
	}

	if _, err := file.Seek(offset, 0); err != nil {
		return offset, nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		pending.WriteString(scanner.Text())
		pending.WriteString("\n")
		offset += int64(len(scanner.Bytes())) + 1
	}

	buffered := pending.String()
	cut := lastCompleteRecordEnd(buffered)
	if cut < 0 {
		return offset, nil
	}

	invocations, err := Parse(buffered[:cut])
	if err != nil {
		// A malformed record is a broken mock; stop emitting rather than
		// deliver partial state. The consumer sees a closed channel.
		return offset, fmt.Errorf("malformed transcript record: %w", err)
	}
	pending.Reset()
	pending.WriteString(buffered[cut:])

	for _, inv := range invocations {
		select {
		case <-ctx.Done():
			return offset, nil
		case records <- inv:
		}
	}
	return offset, nil
}

// lastCompleteRecordEnd returns the index just past the final END MOCK line
// in text, or -1 when no complete record is buffered.
func lastCompleteRecordEnd(text string) int {
	idx := strings.LastIndex(text, endMarker+"\n")
	if idx < 0 {
		return -1
	}
	return idx + len(endMarker) + 1
}
