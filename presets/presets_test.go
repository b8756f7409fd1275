package presets_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/htmlguard/htmlguard/presets"
)

func TestFormattingAndBlocksCompose(t *testing.T) {
	joined := presets.Formatting().And(presets.Blocks())
	out := joined.Sanitize(`<p>hello <b>world</b></p><script>bad()</script>`, nil)
	require.Equal(t, `<p>hello <b>world</b></p>`, out)
}

func TestLinksInjectsNofollowAndNoopener(t *testing.T) {
	out := presets.Links().Sanitize(`<a href="https://example.com" target="_blank">go</a>`, nil)
	require.Contains(t, out, "nofollow")
	require.Contains(t, out, "noopener")
	require.Contains(t, out, "noreferrer")
}

func TestImagesAllowsSrcAndAlt(t *testing.T) {
	out := presets.Images().Sanitize(`<img src="https://example.com/a.png" alt="a" onerror="x()">`, nil)
	require.Contains(t, out, `src="https://example.com/a.png"`)
	require.Contains(t, out, `alt="a"`)
	require.NotContains(t, out, "onerror")
}

func TestStylesDropsDisallowedProperties(t *testing.T) {
	joined := presets.Blocks().And(presets.Styles())
	out := joined.Sanitize(`<div style="color: red; position: fixed">x</div>`, nil)
	require.Contains(t, out, "color")
	require.NotContains(t, out, "position")
}

func TestStylesAllowsStyleElementAndStripsImport(t *testing.T) {
	out := presets.Styles().Sanitize(`<style>@import 'javascript:alert(1)'; color: red</style>`, nil)
	require.Contains(t, out, "<style>")
	require.Contains(t, out, "</style>")
	require.NotContains(t, out, "@import")
	require.NotContains(t, out, "javascript")
	require.Contains(t, out, "color")
}
