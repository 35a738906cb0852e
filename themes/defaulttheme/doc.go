// Package defaulttheme is the built-in Pablo theme, registered as "Default".
//
// It renders a Bootstrap page with the plugin navigation (lhsNav) on the
// left, the remotes (rhsNav) on the right, pending flash messages and the
// plugin output in #content-section. pablo.js loads plugin links into
// #content-section with AJAX, so those requests receive only Out["main"].
//
//	app := pablo.New(append(defaulttheme.Options(),
//	    pablo.WithPlugin("Home", home.New),
//	)...)
package defaulttheme
