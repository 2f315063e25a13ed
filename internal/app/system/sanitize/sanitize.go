// internal/app/system/sanitize/sanitize.go
//
// Package sanitize strips markup from user-supplied text fields
// (workspace/project names, descriptions, task titles) before storage.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes all HTML; built once, safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// Text strips every HTML element and attribute from s and trims the
// result.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
