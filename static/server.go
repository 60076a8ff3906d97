package static

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed dist
var dist embed.FS

// Fingerprinted build output can be cached hard; the index must always be
// revalidated so clients pick up new asset hashes.
var assetExts = []string{".js", ".css", ".svg", ".ico", ".png"}

func isAsset(path string) bool {
	if strings.HasPrefix(path, "/assets/") {
		return true
	}
	for _, ext := range assetExts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func Handler() http.Handler {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		return http.NotFoundHandler()
	}
	fileServer := http.FileServer(http.FS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAsset(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			fileServer.ServeHTTP(w, r)
			return
		}
		// every app route falls through to the index
		b, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			http.Error(w, "index not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	})
}
