// Package templates holds the site's templ components.
//
// Edit the .templ sources and run `templ generate` to refresh the
// *_templ.go files.
package templates
