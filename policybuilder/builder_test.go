package policybuilder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/htmlguard/htmlguard/policybuilder"
)

func TestBuilder_AllowAttributesAccumulatesAcrossCalls(t *testing.T) {
	f, err := policybuilder.New().
		AllowElements("a").
		AllowAttributes("href").OnElements("a").
		AllowAttributes("title").OnElements("a").
		Build()
	require.NoError(t, err)

	require.Equal(t, `<a href="x" title="y">z</a>`, f.Sanitize(`<a href="x" title="y" onclick="evil()">z</a>`, nil))
}

func TestBuilder_MatchingRestrictsByValue(t *testing.T) {
	f, err := policybuilder.New().
		AllowElements("div").
		AllowAttributes("data-level").Matching(`value == "1" || value == "2"`).OnElements("div").
		Build()
	require.NoError(t, err)

	require.Contains(t, f.Sanitize(`<div data-level="1">x</div>`, nil), `data-level="1"`)
	require.NotContains(t, f.Sanitize(`<div data-level="9">x</div>`, nil), `data-level`)
}

func TestBuilder_RelInjectionSkipWinsOverRequire(t *testing.T) {
	f, err := policybuilder.New().
		AllowElements("a").
		AllowAttributes("href").OnElements("a").
		AllowStandardURLProtocols().
		RequireRelNofollowOnLinks().
		SkipRelsOnLinks("nofollow").
		Build()
	require.NoError(t, err)

	out := f.Sanitize(`<a href="https://example.com">x</a>`, nil)
	require.NotContains(t, out, "nofollow")
}

func TestBuilder_InvalidRelTokenIsRecordedAsError(t *testing.T) {
	_, err := policybuilder.New().RequireRelsOnLinks("no follow").Build()
	require.Error(t, err)
}
