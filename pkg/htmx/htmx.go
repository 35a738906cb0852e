package htmx

import (
	"net/http"
	"strings"
)

// IsHTMX reports whether the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// IsXHR reports whether the request was sent with X-Requested-With: XMLHttpRequest.
func IsXHR(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(HeaderXRequestedWith), XMLHttpRequest)
}

// IsAJAX reports whether the request expects a page fragment instead of a
// full document. Both HTMX and plain XHR clients qualify.
func IsAJAX(r *http.Request) bool {
	return IsHTMX(r) || IsXHR(r)
}

// Redirect sends a client-side redirect. HTMX requests get an HX-Redirect
// header with 200 so the browser navigates instead of swapping the target;
// everything else gets a 303 See Other.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
