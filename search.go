// Package godao provides a declarative, entity-agnostic search layer over
// relational storage.
//
// Application code describes what to load with a Search object (filters,
// sorts, fetches, projections, paging) instead of hand-written SQL. The
// model in this package is backend-agnostic; the sql sub-package translates
// a Search into executable queries and runs them against a database through
// pluggable adapters.
package godao

// Search describes a query over a single entity type.
//
// The entity type may be left unset and supplied per call through the
// facade's force-type variants. A Search is owned by its caller: the facade
// never mutates it beyond the documented temporary force-type assignment,
// which is reverted before the call returns.
type Search struct {
	entityType string

	Filters []Filter
	Sorts   []Sort
	Fields  []Field
	Fetches []string

	// FirstResult and MaxResults bound the returned page. Zero means
	// unbounded.
	FirstResult int
	MaxResults  int

	// Disjunction combines the top-level filters with OR instead of AND.
	Disjunction bool
}

// NewSearch creates a Search for the given entity type. The type may be
// empty when the caller intends to force it per operation.
func NewSearch(entityType string) *Search {
	return &Search{entityType: entityType}
}

// EntityType returns the target entity type, or "" when unset.
func (s *Search) EntityType() string { return s.entityType }

// SetEntityType assigns the target entity type. An empty string clears it.
func (s *Search) SetEntityType(entityType string) *Search {
	s.entityType = entityType
	return s
}

// AddFilter appends filters to the search.
func (s *Search) AddFilter(filters ...Filter) *Search {
	s.Filters = append(s.Filters, filters...)
	return s
}

// AddSort appends a sort entry.
func (s *Search) AddSort(sorts ...Sort) *Search {
	s.Sorts = append(s.Sorts, sorts...)
	return s
}

// AddSortAsc appends an ascending sort on the given property path.
func (s *Search) AddSortAsc(property string) *Search {
	return s.AddSort(Asc(property))
}

// AddSortDesc appends a descending sort on the given property path.
func (s *Search) AddSortDesc(property string) *Search {
	return s.AddSort(Desc(property))
}

// AddField appends field selections, switching the search into projection
// mode.
func (s *Search) AddField(fields ...Field) *Search {
	s.Fields = append(s.Fields, fields...)
	return s
}

// AddFetch appends an association path to load eagerly with the results.
func (s *Search) AddFetch(paths ...string) *Search {
	s.Fetches = append(s.Fetches, paths...)
	return s
}

// SetFirstResult sets the zero-based offset of the first returned row.
func (s *Search) SetFirstResult(first int) *Search {
	s.FirstResult = first
	return s
}

// SetMaxResults caps the number of returned rows. Zero means unbounded.
func (s *Search) SetMaxResults(max int) *Search {
	s.MaxResults = max
	return s
}

// SetDisjunction switches the top-level filter combination to OR.
func (s *Search) SetDisjunction(disjunction bool) *Search {
	s.Disjunction = disjunction
	return s
}

// SearchResult bundles a page of rows with the total count the same
// filters would match without paging. A SearchResult is constructed fresh
// per invocation and never shared.
type SearchResult struct {
	Rows       []any
	TotalCount int64
}
