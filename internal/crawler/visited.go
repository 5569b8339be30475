package crawler

// visitedSet tracks URLs already claimed within one crawl. Membership is
// exact string equality: URLs differing only by fragment, trailing slash,
// or query order are distinct entries. There is no removal; a URL stays
// visited even when its fetch fails, so nothing is ever retried.
//
// The set is created by Run and discarded with it. Nothing outside one
// crawl invocation can observe or mutate it.
type visitedSet map[string]bool

func newVisitedSet() visitedSet {
	return make(visitedSet)
}

// has reports whether the URL was already claimed.
func (v visitedSet) has(u string) bool {
	return v[u]
}

// mark claims the URL. Marking happens before the fetch, so a cycle
// discovered mid-fetch cannot re-enter the same URL.
func (v visitedSet) mark(u string) {
	v[u] = true
}
