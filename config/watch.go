package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// WatchSampleFiles watches the configured service/branch sample files and
// invokes onChange whenever either is rewritten. Nothing in this repository
// calls it, and setting Config.WatchSamples does not start it. The watcher
// itself reloads nothing; onChange runs on the watcher's own goroutine.
func WatchSampleFiles(cfg *Config, logger *slog.Logger, onChange func()) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, path := range []string{cfg.Service, cfg.Branch} {
		if err := w.Add(path); err != nil {
			logger.Warn("config: cannot watch sample file", "path", path, "err", err)
		}
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					logger.Info("config: sample file changed, will reload before next run", "path", ev.Name)
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config: sample watcher error", "err", err)
			}
		}
	}()
	return w, nil
}
