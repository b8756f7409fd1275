package htmlguard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/htmlguard/htmlguard"
)

func TestJoinAttributePolicies_StricterWins(t *testing.T) {
	onlyHref := func(element, attr, value string) (string, bool) { return value, attr == "href" }
	upper := func(element, attr, value string) (string, bool) { return value + "!", true }

	joined := htmlguard.JoinAttributePolicies(onlyHref, upper)

	v, keep := joined("a", "href", "x")
	require.True(t, keep)
	require.Equal(t, "x!", v)

	_, keep = joined("a", "class", "x")
	require.False(t, keep)
}

func TestJoinAttributePolicies_IdentityIsNeutral(t *testing.T) {
	v, keep := htmlguard.JoinAttributePolicies(htmlguard.IdentityAttributePolicy, htmlguard.IdentityAttributePolicy)("a", "href", "x")
	require.True(t, keep)
	require.Equal(t, "x", v)
}

func TestGateURL_ProtocolRelativeAlwaysAllowed(t *testing.T) {
	_, ok := htmlguard.GateURL("//example.com/a", htmlguard.AllowProtocols("https"))
	require.True(t, ok)
}

func TestGateURL_VoidsControlCharacterSmuggling(t *testing.T) {
	_, ok := htmlguard.GateURL("java\tscript:alert(1)", htmlguard.AllowProtocols("https"))
	require.False(t, ok)
}

func TestIntersectProtocolPolicies(t *testing.T) {
	a := htmlguard.AllowProtocols("http", "https")
	b := htmlguard.AllowProtocols("https", "mailto")
	joined := htmlguard.IntersectProtocolPolicies(a, b)
	require.True(t, joined("https"))
	require.False(t, joined("http"))
	require.False(t, joined("mailto"))
}
