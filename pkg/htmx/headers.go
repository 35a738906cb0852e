package htmx

// Request headers.
const (
	HeaderHXRequest      = "HX-Request"
	HeaderHXTarget       = "HX-Target"
	HeaderHXCurrentURL   = "HX-Current-URL"
	HeaderXRequestedWith = "X-Requested-With"
)

// Response headers.
const (
	HeaderHXRedirect = "HX-Redirect"
	HeaderHXTrigger  = "HX-Trigger"
)

// XMLHttpRequest is the X-Requested-With value sent by XHR/fetch clients.
const XMLHttpRequest = "XMLHttpRequest"
