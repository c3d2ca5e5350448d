package godao

// PagingPolicy bounds the page sizes a processor will accept. Searches are
// caller-owned, so the policy is applied to the translated query rather
// than by mutating the Search.
type PagingPolicy struct {
	// DefaultMaxResults caps unbounded searches. Zero leaves them
	// unbounded.
	DefaultMaxResults int
	// MaxMaxResults clamps explicit page sizes. Zero disables clamping.
	MaxMaxResults int
}

// DefaultPagingPolicy returns a policy that leaves searches untouched.
func DefaultPagingPolicy() PagingPolicy {
	return PagingPolicy{}
}

// Normalize applies the policy to the requested bounds.
func (p PagingPolicy) Normalize(firstResult, maxResults int) (int, int) {
	if firstResult < 0 {
		firstResult = 0
	}
	if maxResults < 0 {
		maxResults = 0
	}
	if maxResults == 0 && p.DefaultMaxResults > 0 {
		maxResults = p.DefaultMaxResults
	}
	if p.MaxMaxResults > 0 && maxResults > p.MaxMaxResults {
		maxResults = p.MaxMaxResults
	}
	return firstResult, maxResults
}
