package feed

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrBadFilename marks a drop file whose name does not carry a user id.
var ErrBadFilename = errors.New("feed: file name must be <userID>_<label>.json")

// importedSuffix marks a drop file as processed so restarts skip it.
const importedSuffix = ".imported"

// UserIDFromFilename extracts the owning user from a drop file named
// "<userID>_<label>.json".
func UserIDFromFilename(path string) (uint, error) {
	name := filepath.Base(path)
	idx := strings.IndexByte(name, '_')
	if idx <= 0 {
		return 0, ErrBadFilename
	}
	id, err := strconv.ParseUint(name[:idx], 10, 32)
	if err != nil {
		return 0, ErrBadFilename
	}
	return uint(id), nil
}

// Watcher imports feed files dropped into a directory as they appear.
type Watcher struct {
	dir      string
	importer *Importer
	fs       *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher starts watching dir. Files already present are imported
// immediately, then new *.json files as they are created.
func NewWatcher(dir string, importer *Importer) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("feed: starting watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("feed: watching %s: %w", dir, err)
	}
	w := &Watcher{dir: dir, importer: importer, fs: fs, done: make(chan struct{})}
	w.sweep()
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

// sweep imports any unprocessed files already in the directory.
func (w *Watcher) sweep() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Printf("feed: reading %s: %v", w.dir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.process(filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			// Producer contract: drop files are small exports written in
			// one shot, so a short settle delay after Create is enough. A
			// producer streaming a file slowly must write elsewhere and
			// rename into the drop directory instead.
			time.Sleep(200 * time.Millisecond)
			w.process(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("feed: watcher error: %v", err)
		}
	}
}

// process imports one drop file and renames it so it is not re-imported. A
// bad file is logged and left in place; the batch must not stop for it.
func (w *Watcher) process(path string) {
	if !strings.HasSuffix(path, ".json") {
		return
	}
	userID, n, err := w.importer.ImportFile(path)
	if err != nil {
		log.Printf("feed: importing %s: %v", path, err)
		return
	}
	log.Printf("feed: imported %d transactions for user %d from %s", n, userID, filepath.Base(path))
	if err := os.Rename(path, path+importedSuffix); err != nil {
		log.Printf("feed: marking %s imported: %v", path, err)
	}
}
