package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsScripts(t *testing.T) {
	out := Sanitize(`<p>quiet corner</p><script>alert(1)</script>`)
	assert.Contains(t, out, "quiet corner")
	assert.NotContains(t, out, "script")
}

func TestSanitizeStrictStripsAllMarkup(t *testing.T) {
	assert.Equal(t, "Night Owl", SanitizeStrict(`<b>Night Owl</b>`))
	assert.Equal(t, "plain", SanitizeStrict("plain"))
}
