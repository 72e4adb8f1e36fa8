// Package validation holds the receipt file-type check and the bill record
// validator used by the bills resource.
package validation

import "regexp"

var acceptedMediaType = regexp.MustCompile(`(?i)(png|jpg|jpe?g)$`)

// IsAcceptable reports whether a declared media type is an accepted receipt
// image. Only the declared type string is inspected, never file bytes or
// the file extension.
func IsAcceptable(mediaType string) bool {
	return acceptedMediaType.MatchString(mediaType)
}
