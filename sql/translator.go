// Package sqlsearch translates backend-agnostic searches into SQL and
// executes them against database/sql connections through pluggable
// adapters.
package sqlsearch

import (
	"fmt"
	"reflect"
	"strings"

	godao "github.com/vincent3i/godao"
	"github.com/vincent3i/godao/metadata"
)

// CompiledQuery is a search rendered to SQL with arguments and the plan
// needed to shape the returned rows.
type CompiledQuery struct {
	SQL  string
	Args []any
	Meta *metadata.Metadata

	// Scans describes the select list of an entity query, in order.
	// Empty for projection and count queries.
	Scans []ScanColumn
	// Fetches describes eagerly loaded association paths, parents before
	// children.
	Fetches []FetchPlan

	// Projection marks tuple-mode results.
	Projection bool
	NumColumns int

	// DistinctRoot marks queries that fan out rows through a to-many
	// join. Paging is then withheld from the SQL; the scanner regroups
	// rows by root identity and applies FirstResult/MaxResults in memory.
	DistinctRoot bool
	FirstResult  int
	MaxResults   int
}

// ScanColumn maps one selected column to the property it populates.
type ScanColumn struct {
	Expr string
	// FetchPath is "" for root entity columns, otherwise the association
	// path the column belongs to.
	FetchPath string
	Prop      *metadata.Property
}

// FetchPlan describes one eagerly loaded association path.
type FetchPlan struct {
	Path   string
	Parent string // "" when attached to the root entity
	// Prop is the association property on the parent entity.
	Prop *metadata.Property
	// Meta is the target entity metadata.
	Meta   *metadata.Metadata
	ToMany bool
}

// Translator converts Search criteria into executable SQL query plans.
// A Translator is stateless across calls and safe for concurrent use.
type Translator struct {
	placeholder func(n int) string
	paging      godao.PagingPolicy
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithPlaceholder sets the bind-parameter style, e.g. $n for PostgreSQL or
// ? for MySQL.
func WithPlaceholder(fn func(n int) string) TranslatorOption {
	return func(t *Translator) { t.placeholder = fn }
}

// WithPagingPolicy bounds the page sizes of translated queries.
func WithPagingPolicy(policy godao.PagingPolicy) TranslatorOption {
	return func(t *Translator) { t.paging = policy }
}

// NewTranslator creates a translator. The default placeholder style is $n.
func NewTranslator(opts ...TranslatorOption) *Translator {
	t := &Translator{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate builds the row-fetching query plan for a search.
func (t *Translator) Translate(s *godao.Search) (*CompiledQuery, error) {
	b, err := t.newBuild(s)
	if err != nil {
		return nil, err
	}

	q := &CompiledQuery{Meta: b.meta}

	var selectList string
	var groupBy string
	if len(s.Fields) > 0 {
		selectList, groupBy, err = b.buildProjection()
		if err != nil {
			return nil, err
		}
		q.Projection = true
		q.NumColumns = len(s.Fields)
	} else {
		q.Scans, q.Fetches, err = b.buildEntitySelect()
		if err != nil {
			return nil, err
		}
		exprs := make([]string, len(q.Scans))
		for i, sc := range q.Scans {
			exprs[i] = sc.Expr
		}
		selectList = strings.Join(exprs, ", ")
	}

	where, err := b.compileFilters(s.Filters, s.Disjunction)
	if err != nil {
		return nil, err
	}

	orderBy, err := b.buildOrderBy()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s t0", selectList, b.meta.Table)
	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(groupBy)
	}
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}

	first, max := t.paging.Normalize(s.FirstResult, s.MaxResults)
	if b.fanOut && !q.Projection {
		// Fan-out inflates the row count, so SQL-level paging would page
		// over duplicated roots. Dedup and page in memory instead.
		q.DistinctRoot = true
		q.FirstResult = first
		q.MaxResults = max
	} else {
		if max > 0 {
			fmt.Fprintf(&sb, " LIMIT %s", b.arg(max))
		}
		if first > 0 {
			fmt.Fprintf(&sb, " OFFSET %s", b.arg(first))
		}
	}

	q.SQL = sb.String()
	q.Args = b.args
	return q, nil
}

// TranslateCount builds the counting variant of a search: the same filter
// and join logic, selecting a distinct root count, with sorts, paging and
// fetches stripped.
func (t *Translator) TranslateCount(s *godao.Search) (*CompiledQuery, error) {
	b, err := t.newBuild(s)
	if err != nil {
		return nil, err
	}

	where, err := b.compileFilters(s.Filters, s.Disjunction)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT COUNT(DISTINCT t0.%s) FROM %s t0", b.meta.IDProperty().Column, b.meta.Table)
	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	return &CompiledQuery{SQL: sb.String(), Args: b.args, Meta: b.meta}, nil
}

// queryBuild carries the per-translation state: join aliases, collected
// args and the running placeholder index.
type queryBuild struct {
	tr   *Translator
	s    *godao.Search
	meta *metadata.Metadata

	joins  []string
	alias  map[string]string // association path -> table alias
	fanOut bool

	args []any
}

func (t *Translator) newBuild(s *godao.Search) (*queryBuild, error) {
	if s == nil {
		return nil, godao.ErrNullSearch
	}
	entityType := s.EntityType()
	if entityType == "" {
		return nil, godao.NewMetadataError("", "search has no entity type")
	}
	meta, err := metadata.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	return &queryBuild{
		tr:    t,
		s:     s,
		meta:  meta,
		alias: make(map[string]string),
	}, nil
}

// arg registers a bind argument and returns its placeholder.
func (b *queryBuild) arg(v any) string {
	b.args = append(b.args, v)
	return b.tr.placeholder(len(b.args))
}

// join ensures a LEFT JOIN for the association segment reachable from
// ownerAlias, reusing one alias per distinct association path.
func (b *queryBuild) join(ownerAlias string, seg metadata.PathSegment) (string, error) {
	if a, ok := b.alias[seg.Path]; ok {
		return a, nil
	}
	target, err := seg.Prop.Target()
	if err != nil {
		return "", err
	}
	a := fmt.Sprintf("a%d", len(b.alias)+1)
	var on string
	switch seg.Prop.Kind {
	case metadata.KindToOne:
		on = fmt.Sprintf("%s.%s = %s.%s", ownerAlias, seg.Prop.Column, a, target.IDProperty().Column)
	case metadata.KindToMany:
		on = fmt.Sprintf("%s.%s = %s.%s", a, seg.Prop.Column, ownerAlias, seg.Meta.IDProperty().Column)
		b.fanOut = true
	default:
		return "", godao.NewInvalidPathReason(b.meta.Name, seg.Path, "cannot join a column segment")
	}
	b.joins = append(b.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s", target.Table, a, on))
	b.alias[seg.Path] = a
	return a, nil
}

// ownerAlias joins every association segment before the last one and
// returns the alias of the table owning the terminal property.
func (b *queryBuild) ownerAlias(segs []metadata.PathSegment) (string, error) {
	alias := "t0"
	for i := 0; i < len(segs)-1; i++ {
		a, err := b.join(alias, segs[i])
		if err != nil {
			return "", err
		}
		alias = a
	}
	return alias, nil
}

// columnExpr resolves a property path to a column expression, joining as
// needed. Null checks may terminate at a to-one association, in which case
// the owning table's foreign key column is compared.
func (b *queryBuild) columnExpr(path string, nullCheck bool) (string, error) {
	segs, err := metadata.ResolvePath(b.meta, path)
	if err != nil {
		return "", err
	}
	last := segs[len(segs)-1]
	alias, err := b.ownerAlias(segs)
	if err != nil {
		return "", err
	}
	switch last.Prop.Kind {
	case metadata.KindColumn:
		return alias + "." + last.Prop.Column, nil
	case metadata.KindToOne:
		if nullCheck {
			return alias + "." + last.Prop.Column, nil
		}
		return "", godao.NewInvalidPathReason(b.meta.Name, path, "path ends at a to-one association; filter on one of its columns")
	default:
		return "", godao.NewInvalidPathReason(b.meta.Name, path, "path ends at a to-many association")
	}
}

// compileFilters renders a filter list. An empty list matches everything.
func (b *queryBuild) compileFilters(filters []godao.Filter, disjunction bool) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		s, err := b.compileFilter(f)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	connector := " AND "
	if disjunction {
		connector = " OR "
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, connector) + ")", nil
}

func (b *queryBuild) compileFilter(f godao.Filter) (string, error) {
	switch f.Op {
	case godao.OpAnd:
		return b.compileFilters(f.Filters, false)
	case godao.OpOr:
		return b.compileFilters(f.Filters, true)
	case godao.OpNot:
		inner, err := b.compileFilters(f.Filters, false)
		if err != nil {
			return "", err
		}
		if inner == "" {
			return "", nil
		}
		return "NOT (" + inner + ")", nil
	}

	col, err := b.columnExpr(f.Property, f.Op == godao.OpIsNull || f.Op == godao.OpNotNull)
	if err != nil {
		return "", err
	}

	switch f.Op {
	case godao.OpEq:
		return fmt.Sprintf("%s = %s", col, b.arg(f.Value)), nil
	case godao.OpNe:
		return fmt.Sprintf("%s <> %s", col, b.arg(f.Value)), nil
	case godao.OpGt:
		return fmt.Sprintf("%s > %s", col, b.arg(f.Value)), nil
	case godao.OpGe:
		return fmt.Sprintf("%s >= %s", col, b.arg(f.Value)), nil
	case godao.OpLt:
		return fmt.Sprintf("%s < %s", col, b.arg(f.Value)), nil
	case godao.OpLe:
		return fmt.Sprintf("%s <= %s", col, b.arg(f.Value)), nil
	case godao.OpIn, godao.OpNotIn:
		vals := flattenValues(f.Value)
		if len(vals) == 0 {
			// IN over nothing matches nothing; NOT IN over nothing
			// matches everything.
			if f.Op == godao.OpIn {
				return "1=0", nil
			}
			return "1=1", nil
		}
		ph := make([]string, len(vals))
		for i, v := range vals {
			ph[i] = b.arg(v)
		}
		op := "IN"
		if f.Op == godao.OpNotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(ph, ", ")), nil
	case godao.OpBetween:
		r, ok := f.Value.([2]any)
		if !ok {
			vals := flattenValues(f.Value)
			if len(vals) != 2 {
				return "", godao.NewInvalidPathReason(b.meta.Name, f.Property, "between requires exactly two values")
			}
			r = [2]any{vals[0], vals[1]}
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, b.arg(r[0]), b.arg(r[1])), nil
	case godao.OpPrefix:
		return fmt.Sprintf("%s LIKE %s", col, b.arg(fmt.Sprintf("%v%%", f.Value))), nil
	case godao.OpSuffix:
		return fmt.Sprintf("%s LIKE %s", col, b.arg(fmt.Sprintf("%%%v", f.Value))), nil
	case godao.OpContains:
		return fmt.Sprintf("%s LIKE %s", col, b.arg(fmt.Sprintf("%%%v%%", f.Value))), nil
	case godao.OpLike:
		return fmt.Sprintf("%s LIKE %s", col, b.arg(f.Value)), nil
	case godao.OpILike:
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", col, b.arg(f.Value)), nil
	case godao.OpIsNull:
		return col + " IS NULL", nil
	case godao.OpNotNull:
		return col + " IS NOT NULL", nil
	default:
		return "", godao.NewInvalidPathReason(b.meta.Name, f.Property, fmt.Sprintf("unsupported operator %q", f.Op))
	}
}

// buildOrderBy renders the sort entries in declared order. A path through
// a to-many association would make the ordering depend on fan-out rows and
// is rejected.
func (b *queryBuild) buildOrderBy() (string, error) {
	if len(b.s.Sorts) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(b.s.Sorts))
	for _, so := range b.s.Sorts {
		segs, err := metadata.ResolvePath(b.meta, so.Property)
		if err != nil {
			return "", err
		}
		for _, seg := range segs {
			if seg.Prop.Kind == metadata.KindToMany {
				return "", godao.NewInvalidPathReason(b.meta.Name, so.Property, "cannot sort through a to-many association")
			}
		}
		col, err := b.columnExpr(so.Property, false)
		if err != nil {
			return "", err
		}
		if so.IgnoreCase {
			col = "LOWER(" + col + ")"
		}
		dir := "ASC"
		if so.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

// buildProjection renders the select list and GROUP BY clause for a field
// selection. Once any aggregate is selected, every plain field must carry
// the group-by marker.
func (b *queryBuild) buildProjection() (string, string, error) {
	hasAggregate := false
	for _, f := range b.s.Fields {
		switch f.Agg {
		case godao.AggNone, godao.AggGroupBy:
		default:
			hasAggregate = true
		}
	}

	selects := make([]string, 0, len(b.s.Fields))
	var groupBy []string
	for _, f := range b.s.Fields {
		if f.Agg == godao.AggCount && f.Property == "*" {
			selects = append(selects, "COUNT(*)")
			continue
		}
		col, err := b.columnExpr(f.Property, false)
		if err != nil {
			return "", "", err
		}
		switch f.Agg {
		case godao.AggNone:
			if hasAggregate {
				return "", "", godao.NewInvalidProjectionError(f.Property,
					"plain field mixed with aggregates must be marked group-by")
			}
			selects = append(selects, col)
		case godao.AggGroupBy:
			selects = append(selects, col)
			groupBy = append(groupBy, col)
		case godao.AggCount:
			selects = append(selects, "COUNT("+col+")")
		case godao.AggCountDistinct:
			selects = append(selects, "COUNT(DISTINCT "+col+")")
		case godao.AggSum:
			selects = append(selects, "SUM("+col+")")
		case godao.AggMin:
			selects = append(selects, "MIN("+col+")")
		case godao.AggMax:
			selects = append(selects, "MAX("+col+")")
		case godao.AggAvg:
			selects = append(selects, "AVG("+col+")")
		default:
			return "", "", godao.NewInvalidProjectionError(f.Property,
				fmt.Sprintf("unknown aggregate %q", f.Agg))
		}
	}
	return strings.Join(selects, ", "), strings.Join(groupBy, ", "), nil
}

// buildEntitySelect renders the select list for a full-entity query: every
// root column, plus the columns of each fetched association. Fetching a
// nested path implies fetching its prefixes so the scanner always has a
// parent to attach to.
func (b *queryBuild) buildEntitySelect() ([]ScanColumn, []FetchPlan, error) {
	scans := make([]ScanColumn, 0, len(b.meta.Columns()))
	for _, p := range b.meta.Columns() {
		scans = append(scans, ScanColumn{Expr: "t0." + p.Column, Prop: p})
	}

	var plans []FetchPlan
	seen := make(map[string]bool)
	for _, fetch := range b.s.Fetches {
		segs, err := metadata.ResolvePath(b.meta, fetch)
		if err != nil {
			return nil, nil, err
		}
		last := segs[len(segs)-1]
		if !last.Prop.IsAssociation() {
			return nil, nil, godao.NewInvalidPathReason(b.meta.Name, fetch, "fetch path must end at an association")
		}
		// Expand prefixes in order so parents precede children.
		alias := "t0"
		for _, seg := range segs {
			alias, err = b.join(alias, seg)
			if err != nil {
				return nil, nil, err
			}
			if seen[seg.Path] {
				continue
			}
			seen[seg.Path] = true

			target, err := seg.Prop.Target()
			if err != nil {
				return nil, nil, err
			}
			parent := ""
			if idx := strings.LastIndex(seg.Path, "."); idx >= 0 {
				parent = seg.Path[:idx]
			}
			plans = append(plans, FetchPlan{
				Path:   seg.Path,
				Parent: parent,
				Prop:   seg.Prop,
				Meta:   target,
				ToMany: seg.Prop.Kind == metadata.KindToMany,
			})
			for _, p := range target.Columns() {
				scans = append(scans, ScanColumn{
					Expr:      alias + "." + p.Column,
					FetchPath: seg.Path,
					Prop:      p,
				})
			}
		}
	}
	return scans, plans, nil
}

// flattenValues normalizes an IN/NOT IN value into a flat argument list.
func flattenValues(v any) []any {
	if v == nil {
		return nil
	}
	if vals, ok := v.([]any); ok {
		return vals
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
