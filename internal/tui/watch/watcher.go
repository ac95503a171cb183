package watch

import "github.com/fsnotify/fsnotify"

// Watcher coalesces filesystem events on the run's directories into a
// single change signal for the TUI.
type Watcher struct {
	fw      *fsnotify.Watcher
	changes chan struct{}
}

// NewWatcher watches the given directories. Directories that do not
// exist yet are skipped; the TUI's periodic tick covers them until
// they appear.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		_ = fw.Add(dir)
	}

	w := &Watcher{
		fw:      fw,
		changes: make(chan struct{}, 1),
	}
	go w.run()

	return w, nil
}

// run forwards fsnotify events as coalesced change signals.
func (w *Watcher) run() {
	defer close(w.changes)
	for {
		select {
		case _, ok := <-w.fw.Events:
			if !ok {
				return
			}
			// One pending signal is enough: a refresh rereads the
			// whole state anyway.
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Changes returns the coalesced change channel. It closes when the
// watcher is closed.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching and closes the change channel.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
