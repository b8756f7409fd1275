package htmlguard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/htmlguard/htmlguard"
)

func TestSanitize_DropsScriptContent(t *testing.T) {
	out := htmlguard.Sanitize("<script>alert(1)</script>hi")
	require.Equal(t, "hi", out)
}

func TestSanitize_RejectsJavascriptURL(t *testing.T) {
	out := htmlguard.Sanitize(`<a href="javascript:alert(1)">click</a>`)
	require.NotContains(t, out, "javascript:")
}

func TestSanitize_InjectsNofollow(t *testing.T) {
	out := htmlguard.Sanitize(`<a href="https://example.com">link</a>`)
	require.Contains(t, out, "nofollow")
}

func TestSanitize_CaseInsensitiveProtocol(t *testing.T) {
	out := htmlguard.Sanitize(`<a href="HTTPS://example.com">link</a>`)
	require.Contains(t, out, "HTTPS://example.com")
}

func TestSanitize_TurkishDottedIDoesNotBypassFileProtocol(t *testing.T) {
	out := htmlguard.Sanitize("<a href=\"FİLE:///etc/passwd\">x</a>")
	require.NotContains(t, out, "passwd")
}

func TestSanitize_Idempotent(t *testing.T) {
	require.True(t, htmlguard.StandardFactory().VerifyIdempotent(`<p>hello <b>world</b></p>`))
}

func TestSanitize_DuplicateAttributeFallsBackToApprovedValue(t *testing.T) {
	out := htmlguard.Sanitize(`<a href="javascript:alert(1)" href="https://example.com">x</a>`)
	require.Contains(t, out, `href="https://example.com"`)
	require.NotContains(t, out, "javascript:")
}
