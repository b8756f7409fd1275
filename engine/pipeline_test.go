package engine_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/htmlguard/htmlguard/engine"
)

func render(t *testing.T, src string) string {
	t.Helper()
	table := engine.NewHTMLContainmentTable()
	toks := engine.Tokenize(src)
	toks = engine.NewBalancer(table, 0).Balance(toks)
	return engine.NewRenderer(table, nil).Render(toks)
}

func TestBalancer_AutoClosesParagraph(t *testing.T) {
	out := render(t, "<p>one<p>two")
	require.Equal(t, "<p>one</p><p>two</p>", out)
}

func TestBalancer_ResumesFormattingAcrossMisnest(t *testing.T) {
	out := render(t, "<b>bold <i>both</b> italic</i>")
	require.Equal(t, "<b>bold <i>both</i></b><i> italic</i>", out)
}

func TestBalancer_ImpliedTbody(t *testing.T) {
	out := render(t, "<table><tr><td>x</td></tr></table>")
	require.Contains(t, out, "<tbody>")
}

func TestBalancer_NestingLimitCaps(t *testing.T) {
	src := ""
	for i := 0; i < 20000; i++ {
		src += "<div>"
	}
	out := render(t, src)
	count := 0
	for i := 0; i+5 <= len(out); i++ {
		if out[i:i+5] == "<div>" {
			count++
		}
	}
	require.LessOrEqual(t, count, engine.DefaultMaxDepth)
}

func TestRenderer_ScriptContentNotReparented(t *testing.T) {
	out := render(t, "<script>alert(1)</script>hi")
	require.Equal(t, "<script>alert(1)</script>hi", out)
}

func TestRenderer_EscapesPCDATA(t *testing.T) {
	out := render(t, "<p>a &amp; b &lt;3</p>")
	require.Contains(t, out, "&amp;")
	require.Contains(t, out, "&lt;")
}

func TestRenderer_BraceSeparatorInsertion(t *testing.T) {
	out := render(t, "<p>x{{y}}z</p>")
	require.NotContains(t, out, "{{y}}")
}

func TestRenderer_ObsoleteElementSubstitution(t *testing.T) {
	out := render(t, "<xmp>raw <b>text</b></xmp>")
	require.Contains(t, out, "<pre>")
	require.NotContains(t, out, "<xmp>")
}

func TestTokenize_VoidElementGetsNoEndTag(t *testing.T) {
	toks := engine.Tokenize("<br><hr>")
	want := []engine.TokenType{
		engine.DocStartToken,
		engine.StartTagToken, engine.StartTagToken,
		engine.DocEndToken,
	}
	var got []engine.TokenType
	for _, tok := range toks {
		got = append(got, tok.Type)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token type sequence mismatch (-want +got):\n%s", diff)
	}
}
