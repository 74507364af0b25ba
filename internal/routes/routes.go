// Package routes defines the HTTP routes of the session persistence API,
// relative to its resource path.
package routes

import "strings"

const (
	SessionByID = "/{id}"
	SaveDraft   = "/save-draft"
	Publish     = "/publish"
)

// Pattern builds a method qualified http.ServeMux pattern under resourcePath.
func Pattern(method, resourcePath, route string) string {
	return method + " /" + strings.Trim(resourcePath, "/") + route
}
