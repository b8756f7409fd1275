package css_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/htmlguard/htmlguard/engine/css"
)

func TestLexSerializeIdempotent(t *testing.T) {
	inputs := []string{
		"color: red;",
		"content: 'it\\'s'",
		"background: url(http://example.com/a.png)",
		"font-family: 'Helvetica Neue', Arial",
	}
	for _, in := range inputs {
		once := css.Serialize(css.Lex(in))
		twice := css.Serialize(css.Lex(once))
		require.Equal(t, once, twice, "not idempotent for %q", in)
	}
}

func TestSanitizeStyle_DropsImport(t *testing.T) {
	schema := css.DefaultSchema()
	out := css.SanitizeStyle("color: red; @import url(evil.css)", schema, nil)
	require.Contains(t, out, "color")
	require.NotContains(t, out, "import")
}

func TestSanitizeStyle_DropsDisallowedProperty(t *testing.T) {
	schema := css.DefaultSchema()
	out := css.SanitizeStyle("position: fixed; color: blue", schema, nil)
	require.NotContains(t, out, "position")
	require.Contains(t, out, "color")
}

func TestSanitizeStyle_URLRequiresPolicy(t *testing.T) {
	schema := css.DefaultSchema()
	out := css.SanitizeStyle(`background-image: url(http://example.com/a.png)`, schema, nil)
	require.Empty(t, out)

	allowAll := func(string) bool { return true }
	out = css.SanitizeStyle(`background-image: url(http://example.com/a.png)`, schema, allowAll)
	require.Contains(t, out, "background-image")
}

func TestIntersect_KeepsOnlyCommonProperties(t *testing.T) {
	a := css.DefaultSchema()
	joined := css.Intersect(a, a)
	require.NotNil(t, joined.Lookup("color"))
}
