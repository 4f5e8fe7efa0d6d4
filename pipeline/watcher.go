package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tooltl/tooltl/config"
	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period awaited before a change triggers a run.
const DefaultDebounce = 500 * time.Millisecond

var watchedExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".ttf", ".otf"}

type watchRoot struct {
	dir      string
	sections Section
}

// Watcher re-runs the sections whose sources change.
type Watcher struct {
	Runner   *Runner
	Config   *config.Config
	Debounce time.Duration
	// OnRun is called after every triggered run.
	OnRun func(sections Section, err error)

	mu      sync.Mutex
	pending map[string]time.Time
	roots   []watchRoot
}

// NewWatcher creates a watcher for the sources of the configuration.
func NewWatcher(r *Runner, cfg *config.Config) *Watcher {
	w := &Watcher{
		Runner:   r,
		Config:   cfg,
		Debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
	}
	for _, j := range cfg.Glyphs {
		w.roots = append(w.roots, watchRoot{filepath.Dir(j.Font), Glyphs})
	}
	for _, j := range cfg.Icons {
		w.roots = append(w.roots, watchRoot{j.Src, Icons})
	}
	for _, j := range cfg.Atlases {
		w.roots = append(w.roots, watchRoot{j.Src, Atlases})
	}
	for _, j := range cfg.Strips {
		w.roots = append(w.roots, watchRoot{j.Src, Strips})
	}
	return w
}

// Watch blocks until the context is cancelled, running the affected sections
// once the changes under the watched directories settle.
func (w *Watcher) Watch(ctx context.Context) error {
	logger := w.Runner.logger()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, dir := range w.Config.WatchDirs() {
		if err := addTree(fw, dir); err != nil {
			// Directory may not exist yet.
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		logger.Debug("watching", zap.String("dir", dir))
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	// Debounce timer for batching rapid changes
	ticker := time.NewTicker(utils.Max(debounce/5, 10*time.Millisecond))
	defer ticker.Stop()

	var quietUntil time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if time.Now().Before(quietUntil) {
				continue
			}
			w.handleEvent(fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", zap.Error(err))

		case <-ticker.C:
			sections := w.settled(debounce)
			if sections == 0 {
				continue
			}
			logger.Info("sources changed", zap.Stringer("sections", sections))
			err := w.Runner.RunSections(ctx, w.Config, sections)
			// Ignore the events caused by our own output.
			quietUntil = time.Now().Add(debounce)
			if w.OnRun != nil {
				w.OnRun(sections, err)
			}
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // Ignore chmod
	}
	if event.Op&fsnotify.Create != 0 {
		if err := addTree(fw, event.Name); err == nil {
			w.record(event.Name)
			return
		}
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || !utils.HasExtension(base, watchedExtensions) {
		return
	}
	w.record(event.Name)
}

func (w *Watcher) record(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

// settled returns the sections affected by the changes older than the debounce window.
func (w *Watcher) settled(debounce time.Duration) Section {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	var sections Section
	for path, t := range w.pending {
		if now.Sub(t) < debounce {
			continue
		}
		delete(w.pending, path)
		sections |= w.sectionsFor(path)
	}
	return downstream(sections)
}

func (w *Watcher) sectionsFor(path string) Section {
	var s Section
	for _, root := range w.roots {
		rel, err := filepath.Rel(root.dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		s |= root.sections
	}
	return s
}

// downstream adds the sections consuming the output of the given ones.
func downstream(s Section) Section {
	if s&Glyphs != 0 {
		s |= Icons
	}
	if s&Icons != 0 {
		s |= Atlases | Strips
	}
	return s
}

// addTree watches dir and its subdirectories. It fails when dir is not a directory.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if path == dir {
				return fs.ErrInvalid
			}
			return nil
		}
		return fw.Add(path)
	})
}
