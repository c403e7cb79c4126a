package main

// This file ensures core dependencies are included as direct dependencies in go.mod
import (
	_ "github.com/fsnotify/fsnotify"
	_ "github.com/google/uuid"
	_ "github.com/gorilla/websocket"
	_ "github.com/klauspost/compress/zstd"
	_ "gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)
