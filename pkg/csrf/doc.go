// Package csrf generates and checks per-session anti-forgery tokens.
//
// A token is created once per session and stored under SessionKey. Clients
// echo it back in the X-CSRF-TOKEN header on API calls; Check compares it
// with the session copy in constant time.
package csrf
