package internal

import (
	"maps"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxMemory bounds the in-memory part of multipart form parsing.
const maxMemory = 32 << 20

// Input holds the merged query and form values of a request.
//
// A plain key maps to a string holding its last value. A key sent with the
// array suffix (tags[]=a&tags[]=b) maps to a []string under the bare name.
// Form values override query values with the same key.
type Input map[string]any

// ParseInput merges r's query string and body form into an Input.
func ParseInput(r *http.Request) (Input, error) {
	in := make(Input)
	in.merge(r.URL.Query())

	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return in, nil
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	default:
		return in, nil
	}

	in.merge(r.PostForm)
	return in, nil
}

func (in Input) merge(values url.Values) {
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if name, ok := strings.CutSuffix(key, "[]"); ok && name != "" {
			in[name] = append([]string(nil), vals...)
			continue
		}
		in[key] = vals[len(vals)-1]
	}
}

// Has reports whether key was sent.
func (in Input) Has(key string) bool {
	_, ok := in[key]
	return ok
}

// String returns the string value of key, the first element of a list
// value, or "".
func (in Input) String(key string) string {
	switch v := in[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// Default returns the string value of key, or def when it is missing or empty.
func (in Input) Default(key, def string) string {
	if v := in.String(key); v != "" {
		return v
	}
	return def
}

// Strings returns the list value of key. A plain string yields a
// one-element slice.
func (in Input) Strings(key string) []string {
	switch v := in[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}

// Flag reports whether key is set: present and not "" or "0". Any other
// value, "false" included, counts as set.
func (in Input) Flag(key string) bool {
	v, ok := in[key]
	if !ok {
		return false
	}
	switch v := v.(type) {
	case string:
		return v != "" && v != "0"
	case []string:
		return len(v) > 0
	case nil:
		return false
	}
	return true
}

// Clone returns a shallow copy of in.
func (in Input) Clone() Input {
	return maps.Clone(in)
}
