// Package htmx detects fragment requests and issues redirects that work for
// both HTMX and regular clients.
//
// A request is treated as AJAX when it carries HX-Request: true or
// X-Requested-With: XMLHttpRequest:
//
//	if htmx.IsAJAX(r) {
//		// write only the main fragment
//	}
package htmx
