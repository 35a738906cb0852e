package docs

import (
	"net/http"
	"strings"
)

func assetHandler(dir string) http.Handler {
	files := http.StripPrefix(strings.TrimSuffix(AssetsPath, "/"), http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
