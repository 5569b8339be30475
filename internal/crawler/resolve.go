package crawler

import (
	"net/url"
	"strings"
)

// Resolve combines a reference found on a page with that page's base URL
// into an absolute URL string, following standard resolution rules:
// scheme and host inheritance, "."/".." collapsing, query and fragment
// kept as part of identity.
//
// There is no error path. A reference that does not parse is returned
// unchanged: it enters the visited set as a distinct entry and its
// failure surfaces at fetch time, not here. Absolute references
// (including schemes like javascript: or mailto:) resolve to themselves.
func Resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
