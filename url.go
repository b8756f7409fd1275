package htmlguard

import "strings"

// URLProtocolPolicy reports whether a candidate protocol (already
// ASCII-lowercased, "" meaning no protocol was present) is trusted.
type URLProtocolPolicy func(protocol string) bool

// StandardURLProtocols is the default "standard" whitelist (spec §4.6).
var StandardURLProtocols = map[string]bool{"http": true, "https": true, "mailto": true, "tel": true}

// AllowProtocols builds a URLProtocolPolicy from an explicit set, always
// permitting the no-protocol case (protocol-relative/fragment-relative
// URLs) since that decision is made by GateURL before this policy runs.
func AllowProtocols(protocols ...string) URLProtocolPolicy {
	set := make(map[string]bool, len(protocols))
	for _, p := range protocols {
		set[asciiLower(p)] = true
	}
	return func(protocol string) bool { return set[protocol] }
}

// IntersectProtocolPolicies returns a policy that allows a protocol only
// when both a and b allow it (spec §4.4 "URL protocol whitelist =
// intersection").
func IntersectProtocolPolicies(a, b URLProtocolPolicy) URLProtocolPolicy {
	return func(protocol string) bool { return a(protocol) && b(protocol) }
}

func asciiLower(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// classifyURL extracts the candidate protocol from the leading characters
// of raw, stopping at the first ':' (spec §4.6). Leading whitespace and C0
// controls are stripped before the search; a control character, tab, or
// newline found within the candidate protocol voids the URL outright
// (returns void=true) rather than merely failing the whitelist check,
// since such bytes are how legacy browsers get tricked into skipping past
// "javascript" filters (e.g. "java\tscript:").
//
// The comparison this feeds is ASCII-only, and that matters: Go's
// strings.ToLower maps "FİLE" (U+0130) to "file", while asciiLower leaves
// the dotted capital I alone, so such a protocol never matches "file".
func classifyURL(raw string) (protocol string, void bool) {
	i := 0
	for i < len(raw) && (raw[i] <= 0x20) {
		i++
	}
	s := raw[i:]

	colon := strings.IndexByte(s, ':')
	if colon == -1 {
		return "", false
	}
	prefix := s[:colon]
	if strings.ContainsAny(prefix, "/?#") {
		return "", false
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < 0x20 {
			return "", true
		}
	}
	return asciiLower(prefix), false
}

// GateURL applies policy to raw, returning the original value unchanged
// when it passes (percent-encoding happens later, in the renderer's URL
// attribute context) or ("", false) when it must be dropped. A protocol-
// relative ("//host/...") or fragment-relative ("#frag", "path") URL has no
// protocol and is always permitted, per spec §4.6.
func GateURL(raw string, policy URLProtocolPolicy) (string, bool) {
	protocol, void := classifyURL(raw)
	if void {
		return "", false
	}
	if protocol == "" {
		return raw, true
	}
	if policy == nil || !policy(protocol) {
		return "", false
	}
	return raw, true
}
