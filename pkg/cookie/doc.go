// Package cookie writes cookies with shared attributes and optional
// HMAC-SHA256 signing.
//
//	m := cookie.New(cookie.WithSecret(secret), cookie.WithSecure(true))
//	m.Write(w, "pablo_sid", token, 86400)
//	token, err := m.Read(r, "pablo_sid")
//
// Signed values are encoded as base64(value) "." base64(signature); a
// tampered cookie yields ErrBadSig.
package cookie
