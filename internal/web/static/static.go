package static

import (
	"embed"
	"net/http"
)

//go:embed css/*
var assets embed.FS

// Handler serves the embedded stylesheets. Mount it under /static/.
func Handler() http.Handler {
	fileServer := http.FileServer(http.FS(assets))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}
