package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated content keeping a safe HTML subset, used
// for spot descriptions entered by administrators.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeStrict strips all markup, used for plain-text fields such as
// profile titles and spot names.
func SanitizeStrict(input string) string {
	return strictPolicy.Sanitize(input)
}
