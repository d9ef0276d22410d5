package app

import (
	"go.uber.org/zap"

	"github.com/dshills/blurrer/internal/config"
	"github.com/dshills/blurrer/internal/config/watcher"
	"github.com/dshills/blurrer/internal/event"
	"github.com/dshills/blurrer/internal/renderer/backend"
	"github.com/dshills/blurrer/internal/renderer/statusline"
)

// reloadRequest is posted by the config watcher to run Reload on the
// event loop.
type reloadRequest struct {
	path string
}

// Reload re-reads the configuration and applies it. On failure the
// current configuration stays active and the error is shown on the
// status line.
func (a *Application) Reload() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		a.log.Warn("config reload failed", zap.String("path", a.configPath), zap.Error(err))
		a.status.SetMessage("config: "+err.Error(), statusline.MessageError)
		return err
	}

	a.apply(cfg)
	a.log.Info("config reloaded", zap.String("path", a.configPath))
	a.status.SetMessage("config reloaded", statusline.MessageInfo)
	a.publish(event.TopicConfigReloaded, event.ConfigReloaded{Path: a.configPath})
	a.publish(event.TopicLayoutChanged, event.LayoutChanged{Reason: "config"})
	return nil
}

func (a *Application) startWatcher() error {
	if !a.watch || a.configPath == "" || a.watcher != nil {
		return nil
	}
	w, err := watcher.New(a.configPath, a.requestReload,
		watcher.WithErrorHandler(func(err error) {
			a.log.Warn("config watcher error", zap.Error(err))
		}))
	if err != nil {
		return err
	}
	a.watcher = w
	a.log.Info("watching config", zap.String("path", w.Path()))
	return nil
}

// requestReload runs on the watcher goroutine.
func (a *Application) requestReload(path string) {
	a.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: reloadRequest{path: path}})
}

func (a *Application) stopWatcher() {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Close(); err != nil {
		a.log.Warn("close config watcher", zap.Error(err))
	}
	a.watcher = nil
}
