package internal

import (
	"fmt"
	"io"
	"net/http"

	"github.com/markc/pablo/pkg/htmx"
	"github.com/markc/pablo/pkg/sanitizer"
)

// Response formats selected with the "format" input.
const (
	FormatHTML    = "html"
	FormatText    = "text"
	FormatJSON    = "json"
	FormatPartial = "partial"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// Response is the rendered outcome of a dispatch.
// A non-empty Redirect takes precedence over Body.
type Response struct {
	Status   int
	Header   http.Header
	Body     string
	Redirect string
}

func newResponse(contentType, body string) *Response {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	return &Response{Status: http.StatusOK, Header: h, Body: body}
}

// Write sends resp to the client.
func (resp *Response) Write(rc *RequestContext) error {
	if resp.Redirect != "" {
		htmx.Redirect(rc.Response(), rc.Request(), resp.Redirect)
		return nil
	}

	h := rc.Response().Header()
	for k, v := range resp.Header {
		h[k] = v
	}
	rc.Response().WriteHeader(resp.Status)
	_, err := io.WriteString(rc.Response(), resp.Body)
	return err
}

// Render produces the response for the requested format:
//
//   - text: Out["main"] with all markup removed
//   - json: Out["main"] as a JSON string
//   - partial: the Out entry named by the "section" input as a JSON string
//   - html (and anything else): the theme's HTML, unless the plugin asked
//     for a redirect or returned a JSONResult
func (i *Init) Render() (*Response, error) {
	main := i.cfg.Out[OutMain]

	switch i.cfg.In.Default("format", FormatHTML) {
	case FormatText:
		return newResponse(contentTypeText, sanitizer.StripTags(main)), nil

	case FormatJSON:
		body, err := encodeJSON(main)
		if err != nil {
			return nil, err
		}
		return newResponse(contentTypeJSON, body), nil

	case FormatPartial:
		section := i.cfg.In.String("section")
		out, ok := i.cfg.Out[section]
		if section == "" || !ok {
			return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidFormatRequest, section)
		}
		body, err := encodeJSON(out)
		if err != nil {
			return nil, err
		}
		return newResponse(contentTypeJSON, body), nil
	}

	return i.renderHTML(main)
}

func (i *Init) renderHTML(main string) (*Response, error) {
	switch res := i.result.(type) {
	case *Redirect:
		return &Response{Status: http.StatusSeeOther, Redirect: res.URL}, nil
	case Redirect:
		return &Response{Status: http.StatusSeeOther, Redirect: res.URL}, nil
	case JSONResult:
		resp := newResponse(contentTypeJSON, main)
		resp.Status = res.status()
		return resp, nil
	case *JSONResult:
		resp := newResponse(contentTypeJSON, main)
		resp.Status = res.status()
		return resp, nil
	}

	body, err := i.theme.HTML(i.rc)
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", i.themeID, err)
	}
	return newResponse(contentTypeHTML, body), nil
}

// String renders the response body, or "" when rendering fails.
func (i *Init) String() string {
	resp, err := i.Render()
	if err != nil {
		i.rc.LogError("render failed", "error", err)
		return ""
	}
	return resp.Body
}
