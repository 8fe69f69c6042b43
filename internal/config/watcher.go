package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const pollFallbackInterval = 60 * time.Second

// Watcher reloads the config file when it changes on disk. fsnotify
// covers the common case; a slow mtime poll catches editors and mounts
// that do not emit events.
type Watcher struct {
	path     string
	onChange func(*Config)

	mu       sync.Mutex
	lastMod  time.Time
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWatcher(path string, onChange func(*Config)) *Watcher {
	w := &Watcher{
		path:     path,
		onChange: onChange,
		stopChan: make(chan struct{}),
	}
	if fi, err := os.Stat(path); err == nil {
		w.lastMod = fi.ModTime()
	}
	return w
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[WARN] config: fsnotify unavailable, polling only: %v", err)
	} else {
		defer fsw.Close()
		// Watch the directory, not the file: editors replace files on
		// save and the watch would die with the old inode.
		if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			log.Printf("[WARN] config: watch %s: %v", filepath.Dir(w.path), err)
		}
	}

	ticker := time.NewTicker(pollFallbackInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	var errors chan error
	if fsw != nil {
		events = fsw.Events
		errors = fsw.Errors
	}

	for {
		select {
		case <-w.stopChan:
			return
		case ev := <-events:
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors fire several events per save; let the file settle.
			time.Sleep(100 * time.Millisecond)
			w.checkAndReload()
		case err := <-errors:
			log.Printf("[WARN] config: watcher error: %v", err)
		case <-ticker.C:
			w.checkAndReload()
		}
	}
}

func (w *Watcher) checkAndReload() {
	fi, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	changed := fi.ModTime().After(w.lastMod)
	if changed {
		w.lastMod = fi.ModTime()
	}
	w.mu.Unlock()
	if !changed {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		log.Printf("[ERROR] config: reload failed, keeping previous: %v", err)
		return
	}
	log.Printf("config reloaded from %s", w.path)
	w.onChange(cfg)
}
