package sanitizer

import (
	"html"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	docPolicy    *bluemonday.Policy
	initOnce     sync.Once
)

var codeLanguage = regexp.MustCompile(`^language-[\w+-]+$`)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Rendered markdown: headings, tables, images, task lists.
		docPolicy = bluemonday.UGCPolicy()
		docPolicy.AllowAttrs("class").Matching(codeLanguage).OnElements("code")
		docPolicy.AllowAttrs("type", "checked", "disabled").OnElements("input")
		docPolicy.AllowAttrs("class").Matching(regexp.MustCompile(`^table[\w -]*$`)).OnElements("table")
	})
}

// StripTags removes every HTML element and returns the remaining text with
// entities decoded, ready for a text/plain body.
func StripTags(s string) string {
	initPolicies()
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// SanitizeDocument cleans HTML produced from trusted-format markdown.
// It allows the structural elements markdown can emit but no scripts,
// styles or event handlers.
func SanitizeDocument(s string) string {
	initPolicies()
	return docPolicy.Sanitize(s)
}
