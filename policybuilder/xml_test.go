package policybuilder_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/htmlguard/htmlguard/policybuilder"
)

func TestLoadXML_AppliesEveryDirective(t *testing.T) {
	doc := `<policy>
		<allow-elements><item>p</item><item>b</item><item>a</item></allow-elements>
		<allow-attributes on-elements="a"><item>href</item></allow-attributes>
		<allow-url-protocols><item>https</item></allow-url-protocols>
		<require-rel><item>nofollow</item></require-rel>
		<auto-noopener/>
		<max-depth>10</max-depth>
	</policy>`

	b, err := policybuilder.LoadXML(strings.NewReader(doc))
	require.NoError(t, err)
	factory, err := b.Build()
	require.NoError(t, err)

	out := factory.Sanitize(`<p>hi <a href="https://example.com">link</a></p>`, nil)
	require.Contains(t, out, "<p>")
	require.Contains(t, out, `href="https://example.com"`)
	require.Contains(t, out, "nofollow")
}

func TestLoadXML_RejectsUnknownDirective(t *testing.T) {
	_, err := policybuilder.LoadXML(strings.NewReader(`<policy><bogus/></policy>`))
	require.Error(t, err)
}

func TestWriteXML_RoundTripsElementNamesOnly(t *testing.T) {
	b := policybuilder.New().AllowElements("p", "b")
	factory, err := b.Build()
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, policybuilder.WriteXML(factory, &buf))
	require.Contains(t, buf.String(), "<allow-elements>")
	require.Contains(t, buf.String(), "<item>p</item>")
	require.Contains(t, buf.String(), "<item>b</item>")

	reloaded, err := policybuilder.LoadXML(strings.NewReader(buf.String()))
	require.NoError(t, err)
	reloadedFactory, err := reloaded.Build()
	require.NoError(t, err)

	out := reloadedFactory.Sanitize(`<p>hi <b>bold</b></p>`, nil)
	require.Equal(t, "<p>hi <b>bold</b></p>", out)
}
