//go:build !server

// +build !server

package main

import (
	"embed"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

// FileLoader serves the project's video file to the frontend
type FileLoader struct {
	app *App
}

// NewFileLoader creates a new FileLoader instance
func NewFileLoader(app *App) *FileLoader {
	return &FileLoader{app: app}
}

// ServeHTTP handles requests for the served video. Only the single
// path registered by the session is ever readable; http.ServeFile
// gives the video element the range support it needs for scrubbing.
func (f *FileLoader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/media/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	requestedPath := strings.TrimPrefix(r.URL.Path, "/media")

	decodedPath, err := url.PathUnescape(requestedPath)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(fmt.Sprintf("Could not decode path: %s", requestedPath)))
		return
	}

	served := f.app.ServedVideoPath()
	if served == "" || decodedPath != served {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(fmt.Sprintf("Forbidden: %s", decodedPath)))
		return
	}

	http.ServeFile(w, r, decodedPath)
}

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	app := NewApp()

	err := wails.Run(&options.App{
		Title:     "funedit",
		Width:     1280,
		Height:    800,
		MinWidth:  1024,
		MinHeight: 640,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: NewFileLoader(app),
		},
		BackgroundColour:         &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		Frameless:                true,
		StartHidden:              false,
		EnableDefaultContextMenu: true,
		LogLevel:                 logger.DEBUG,
		LogLevelProduction:       logger.INFO,
		OnStartup:                app.startup,
		OnShutdown:               app.shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				HideTitleBar:               false,
				FullSizeContent:            true,
			},
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
