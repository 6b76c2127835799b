package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// ChangeKind tells the game loop what a changed file affects.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeNavigation
	ChangeMap
	ChangeUnit
	ChangeScript
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNavigation:
		return "navigation"
	case ChangeMap:
		return "map"
	case ChangeUnit:
		return "unit"
	case ChangeScript:
		return "script"
	default:
		return "none"
	}
}

// Change is one debounced file event.
type Change struct {
	Kind ChangeKind
	Name string // base name without extension
	Path string
}

// Classify maps a path under the prefabs tree to the spec it belongs to.
func Classify(path string) Change {
	s := filepath.ToSlash(path)
	base := filepath.Base(s)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Base(filepath.Dir(filepath.FromSlash(s)))

	switch {
	case isScriptFile(s):
		return Change{Kind: ChangeScript, Name: base, Path: path}
	case !isSpecFile(s):
		return Change{Path: path}
	case dir == "maps":
		return Change{Kind: ChangeMap, Name: name, Path: path}
	case dir == "units":
		return Change{Kind: ChangeUnit, Name: name, Path: path}
	case base == NavigationSpecFile:
		return Change{Kind: ChangeNavigation, Name: name, Path: path}
	}
	return Change{Path: path}
}

type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches the prefabs tree (root plus maps/, units/ and
// scripts/). Directories that do not exist on disk are skipped.
func NewWatcher(root string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	added := 0
	for _, dir := range []string{root, filepath.Join(root, "maps"), filepath.Join(root, "units"), filepath.Join(root, "scripts")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		added++
	}
	if added == 0 {
		_ = w.Close()
		return nil, os.ErrNotExist
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// Poll drains pending changes without blocking. Safe to call once per frame.
func (w *Watcher) Poll() []Change {
	if w == nil {
		return nil
	}
	var out []Change
	for {
		select {
		case c := <-w.Events:
			out = append(out, c)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	deb := debouncer{window: watchDebounce, last: make(map[string]time.Time)}
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			change := Classify(event.Name)
			if change.Kind == ChangeNone {
				continue
			}
			if !deb.allow(event.Name, time.Now()) {
				continue
			}
			select {
			case w.Events <- change:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// debouncer drops repeat events for the same file inside window.
type debouncer struct {
	window time.Duration
	last   map[string]time.Time
}

func (d *debouncer) allow(name string, now time.Time) bool {
	if t, ok := d.last[name]; ok && now.Sub(t) < d.window {
		return false
	}
	d.last[name] = now
	return true
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tengo"
}
