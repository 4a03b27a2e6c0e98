package vulkanitos

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/Mehdi-Antoine/vulkanitos/input"
)

// ShaderWatcher reports changes to compiled shaders in a directory as
// EventShaderChanged events.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	err     error
}

// shaderEvent maps a file system event to an input event. Only writes,
// creations and renames of .spv files count.
func shaderEvent(ev fsnotify.Event) (input.Event, bool) {
	if filepath.Ext(ev.Name) != ".spv" {
		return input.Event{}, false
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return input.Event{}, false
	}
	return input.Event{Kind: input.EventShaderChanged, Path: ev.Name}, true
}

// WatchShaders starts watching dir and pushes into events until Close.
func WatchShaders(dir string, events *input.Queue, logger *log.Logger) (*ShaderWatcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create shader watcher")
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}

	s := &ShaderWatcher{watcher: w, done: make(chan struct{})}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if e, ok := shaderEvent(ev); ok {
					events.Push(e)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Printf("shader watcher: %v", err)
			}
		}
	}()
	return s, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (s *ShaderWatcher) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = errors.Wrap(s.watcher.Close(), "close shader watcher")
		s.wg.Wait()
	})
	return s.err
}

// Destroy lets the watcher sit on a release stack.
func (s *ShaderWatcher) Destroy() {
	_ = s.Close()
}
