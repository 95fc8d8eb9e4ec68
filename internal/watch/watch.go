// Package watch notices edits made to the data file by other processes.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/followup/internal/checksum"
)

// Debounce is how long the watcher waits after the last file event before
// comparing checksums.
const Debounce = 200 * time.Millisecond

// ExternalChangeFunc is called with the data file path when its content no
// longer matches what the server last wrote.
type ExternalChangeFunc func(path string)

// Watch watches the directory holding dataFile until ctx is cancelled.
// The directory is watched rather than the file because saves replace the
// file by rename. lastSaved returns the checksum of the server's own last
// write; events that leave the file at that checksum are ignored.
func Watch(ctx context.Context, dataFile string, lastSaved func() string, logger *slog.Logger, cb ExternalChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dataFile = filepath.Clean(dataFile)
	dir := filepath.Dir(dataFile)
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("file", dataFile))

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(Debounce)
			debounceCh = debounce.C
		} else {
			debounce.Reset(Debounce)
		}
	}

	lastSeen := ""

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			data, readErr := os.ReadFile(dataFile)
			if readErr != nil {
				logger.Warn("watcher: read failed", slog.String("path", dataFile), slog.String("error", readErr.Error()))
				continue
			}
			sum := checksum.Sum(data)
			if sum == lastSaved() || sum == lastSeen {
				continue
			}
			lastSeen = sum
			logger.Info("watcher: data file changed outside the server", slog.String("path", dataFile))
			if cb != nil {
				cb(dataFile)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != dataFile {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
