package sqlsearch

import (
	"context"
	"database/sql"

	godao "github.com/vincent3i/godao"
)

// Session runs compiled queries. Satisfied by QueryExecutor; tests may
// substitute their own.
type Session interface {
	Query(ctx context.Context, q *CompiledQuery) (*sql.Rows, error)
	QueryCount(ctx context.Context, q *CompiledQuery) (int64, error)
}

// SearchProcessor is the search facade: it translates criteria, executes
// them through a session and shapes the rows into entities or tuples.
//
// The force-type variants temporarily assign an entity type to searches
// that carry none, reverting the assignment before returning on every
// path. A search that already targets a different type is rejected with
// ConflictingSearchClassError.
type SearchProcessor struct {
	session    Session
	translator *Translator
}

func NewSearchProcessor(session Session, translator *Translator) *SearchProcessor {
	return &SearchProcessor{session: session, translator: translator}
}

// Search returns the rows matching the criteria: entity instances, or
// tuples when fields are selected.
func (p *SearchProcessor) Search(ctx context.Context, s *godao.Search) ([]any, error) {
	q, err := p.translator.Translate(s)
	if err != nil {
		return nil, err
	}
	rows, err := p.session.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if q.Projection {
		return scanTuples(rows, q)
	}
	return scanEntities(rows, q)
}

// Count returns the number of distinct root entities the search's filters
// match. Field selections, sorts and paging are ignored.
func (p *SearchProcessor) Count(ctx context.Context, s *godao.Search) (int64, error) {
	q, err := p.translator.TranslateCount(s)
	if err != nil {
		return 0, err
	}
	return p.session.QueryCount(ctx, q)
}

// SearchAndCount returns one page of rows together with the total count
// the same filters match. When the search requests no paging, the count is
// taken from the returned rows without a second query.
func (p *SearchProcessor) SearchAndCount(ctx context.Context, s *godao.Search) (*godao.SearchResult, error) {
	rows, err := p.Search(ctx, s)
	if err != nil {
		return nil, err
	}
	result := &godao.SearchResult{Rows: rows}

	if s.FirstResult == 0 && s.MaxResults == 0 && p.translator.paging.DefaultMaxResults == 0 {
		result.TotalCount = int64(len(rows))
		return result, nil
	}

	count, err := p.Count(ctx, s)
	if err != nil {
		return nil, err
	}
	result.TotalCount = count
	return result, nil
}

// SearchUnique returns the single row matching the search, nil when
// nothing matches, or NonUniqueResultError when more than one row does.
func (p *SearchProcessor) SearchUnique(ctx context.Context, s *godao.Search) (any, error) {
	rows, err := p.Search(ctx, s)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, godao.NewNonUniqueResultError(s.EntityType(), len(rows))
	}
}

// SearchForType is Search with the entity type forced for the duration of
// the call.
func (p *SearchProcessor) SearchForType(ctx context.Context, entityType string, s *godao.Search) ([]any, error) {
	restore, err := forceSearchType(s, entityType)
	if err != nil {
		return nil, err
	}
	defer restore()
	return p.Search(ctx, s)
}

// CountForType is Count with the entity type forced for the duration of
// the call.
func (p *SearchProcessor) CountForType(ctx context.Context, entityType string, s *godao.Search) (int64, error) {
	restore, err := forceSearchType(s, entityType)
	if err != nil {
		return 0, err
	}
	defer restore()
	return p.Count(ctx, s)
}

// SearchAndCountForType is SearchAndCount with the entity type forced for
// the duration of the call.
func (p *SearchProcessor) SearchAndCountForType(ctx context.Context, entityType string, s *godao.Search) (*godao.SearchResult, error) {
	restore, err := forceSearchType(s, entityType)
	if err != nil {
		return nil, err
	}
	defer restore()
	return p.SearchAndCount(ctx, s)
}

// SearchUniqueForType is SearchUnique with the entity type forced for the
// duration of the call.
func (p *SearchProcessor) SearchUniqueForType(ctx context.Context, entityType string, s *godao.Search) (any, error) {
	restore, err := forceSearchType(s, entityType)
	if err != nil {
		return nil, err
	}
	defer restore()
	return p.SearchUnique(ctx, s)
}

// forceSearchType assigns entityType to a search that has none, returning
// a restore function that reverts the assignment. A matching type already
// present is left alone; a conflicting one is an error. An empty forced
// type leaves the search untouched.
func forceSearchType(s *godao.Search, entityType string) (func(), error) {
	if s == nil {
		return nil, godao.ErrNullSearch
	}
	if entityType == "" || s.EntityType() == entityType {
		return func() {}, nil
	}
	if s.EntityType() != "" {
		return nil, godao.NewConflictingSearchClassError(s.EntityType(), entityType)
	}
	s.SetEntityType(entityType)
	return func() { s.SetEntityType("") }, nil
}
