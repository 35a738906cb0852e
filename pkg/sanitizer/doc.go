// Package sanitizer wraps bluemonday policies used by the renderer and plugins.
package sanitizer
