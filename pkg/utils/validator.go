package utils

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+$`)
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)
)

// ValidateEmail checks the shape of a login email. Hosts without a dot
// such as "a@a" are accepted.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// SanitizeFileName returns a storage-safe version of an uploaded file name.
// Directory parts and parent references are dropped, other unsafe
// characters become underscores.
func SanitizeFileName(name string) string {
	name = path.Base("/" + strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ".")
	if name == "" || name == "_" {
		return "receipt"
	}
	return name
}
