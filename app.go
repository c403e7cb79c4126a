// app.go
package main

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"funedit/internal/config"
	"funedit/internal/database"
	"funedit/internal/editor"
	"funedit/internal/eventhub"
	"funedit/internal/persist"
	"funedit/internal/snapshot"
	"funedit/internal/watcher"
)

// App struct contains the core application state and managers
type App struct {
	ctx    context.Context
	mu     sync.RWMutex
	config *config.Config

	// Core managers
	dbManager     *database.Database
	gateway       persist.Gateway
	session       *editor.Session
	snapshots     *snapshot.Storage
	scriptWatcher *watcher.ScriptWatcher
	eventHub      *eventhub.EventHub
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts (Wails callback)
func (a *App) startup(ctx context.Context) {
	a.startupCommon(ctx)
}

// Startup is the exported version for standalone server
func (a *App) Startup(ctx context.Context) {
	a.startupCommon(ctx)
}

// startupCommon contains the common startup logic
func (a *App) startupCommon(ctx context.Context) {
	a.ctx = ctx

	// Load config
	cfg, err := config.Load()
	if err != nil {
		runtime.LogError(ctx, "Failed to load config: "+err.Error())
		return
	}
	a.config = cfg

	// Initialize EventHub (before the session that publishes into it)
	a.eventHub = eventhub.New(ctx)
	a.eventHub.SetBroadcaster(&wailsEventEmitter{ctx: ctx})

	// Initialize database and the persistence gateway
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		runtime.LogError(ctx, "Failed to open database: "+err.Error())
		a.gateway = persist.NewMemoryGateway()
	} else {
		a.dbManager = db
		a.gateway = persist.WrapDatabase(db)
	}

	// Initialize the editing session
	a.session = editor.NewSession(a.gateway, a.eventHub, editor.Options{
		WriteDelay:   cfg.WriteDelay(),
		MaxVideoSize: cfg.MaxVideoSize(),
	})

	// Initialize snapshot storage
	a.snapshots = snapshot.NewStorage(cfg.SnapshotDir, cfg.Options.SnapshotCompression)

	// Initialize the funscript file watcher
	w, err := watcher.New(cfg.WatchDebounce(), func(c watcher.Change) {
		a.session.HandleScriptFileChanged(c.Path, c.Type == watcher.ChangeRemoved)
	})
	if err != nil {
		runtime.LogError(ctx, "Failed to create script watcher: "+err.Error())
	} else {
		a.scriptWatcher = w
		if err := w.Start(); err != nil {
			runtime.LogError(ctx, "Failed to start script watcher: "+err.Error())
		}
	}

	runtime.LogInfo(ctx, "funedit started successfully")
}

// shutdown is called when the app is shutting down (Wails callback)
func (a *App) shutdown(ctx context.Context) {
	a.shutdownCommon(ctx)
}

// Shutdown is the exported version for standalone server
func (a *App) Shutdown(ctx context.Context) {
	a.shutdownCommon(ctx)
}

// shutdownCommon contains the common shutdown logic
func (a *App) shutdownCommon(ctx context.Context) {
	// Stop the script watcher
	if a.scriptWatcher != nil {
		a.scriptWatcher.Close()
	}

	// Flush pending debounced writes
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			runtime.LogError(ctx, "Failed to flush session: "+err.Error())
		}
	}

	// Close database
	if a.dbManager != nil {
		a.dbManager.Close()
	}

	runtime.LogInfo(ctx, "funedit shutdown complete")
}

// wailsEventEmitter adapts Wails runtime events to the eventhub
// Broadcaster interface
type wailsEventEmitter struct {
	ctx context.Context
}

func (e *wailsEventEmitter) BroadcastEvent(eventName string, data interface{}) {
	runtime.EventsEmit(e.ctx, eventName, data)
}

// SetEventHubBroadcaster replaces the broadcaster (used by the
// websocket server mode)
func (a *App) SetEventHubBroadcaster(broadcaster eventhub.Broadcaster) {
	if a.eventHub != nil {
		a.eventHub.SetBroadcaster(broadcaster)
	}
}

// ListenAddr returns the configured websocket listen address.
func (a *App) ListenAddr() string {
	if a.config == nil {
		return ""
	}
	return a.config.Options.ServerAddr
}
