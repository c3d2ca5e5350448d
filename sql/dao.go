package sqlsearch

import (
	"context"
	"reflect"

	godao "github.com/vincent3i/godao"
	"github.com/vincent3i/godao/metadata"
)

// DAO provides per-entity write pass-throughs and id-based reads next to
// the search operations. Entities must be registered with the metadata
// package.
type DAO struct {
	exec        *QueryExecutor
	translator  *Translator
	placeholder func(n int) string
}

func NewDAO(exec *QueryExecutor, translator *Translator, placeholder func(n int) string) *DAO {
	return &DAO{exec: exec, translator: translator, placeholder: placeholder}
}

// Get loads a single entity by id, or nil when no row matches.
func (d *DAO) Get(ctx context.Context, entityType string, id any) (any, error) {
	m, err := metadata.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	s := godao.NewSearch(entityType).AddFilter(godao.Eq(m.IDProperty().Name, id))
	q, err := d.translator.Translate(s)
	if err != nil {
		return nil, err
	}
	rows, err := d.exec.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := scanEntities(rows, q)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// Insert writes a new entity row. A zero-valued primary key is omitted so
// auto-increment columns can assign it; the generated id is reported in
// the result when the driver supports it.
func (d *DAO) Insert(ctx context.Context, entity any) (*godao.MutationResult, error) {
	m, err := metadata.LookupEntity(entity)
	if err != nil {
		return nil, err
	}
	ev := entityValue(entity)

	values := make(map[string]any)
	for _, p := range m.Properties() {
		v, ok := columnValue(ev, p)
		if !ok {
			continue
		}
		if p.PK && ev.Field(p.Index).IsZero() {
			continue
		}
		values[p.Column] = v
	}

	return d.apply(ctx, m, godao.NewInsert(values))
}

// Update rewrites every mapped column of an existing entity row, keyed by
// its primary key.
func (d *DAO) Update(ctx context.Context, entity any) (*godao.MutationResult, error) {
	m, err := metadata.LookupEntity(entity)
	if err != nil {
		return nil, err
	}
	ev := entityValue(entity)
	idProp := m.IDProperty()

	set := make(map[string]any)
	for _, p := range m.Properties() {
		if p.PK {
			continue
		}
		v, ok := columnValue(ev, p)
		if !ok {
			continue
		}
		set[p.Column] = v
	}

	id := ev.Field(idProp.Index).Interface()
	return d.apply(ctx, m, godao.NewUpdate(set, godao.Eq(idProp.Column, id)))
}

// DeleteByID removes the entity row with the given id.
func (d *DAO) DeleteByID(ctx context.Context, entityType string, id any) (*godao.MutationResult, error) {
	m, err := metadata.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	return d.apply(ctx, m, godao.NewDelete(godao.Eq(m.IDProperty().Column, id)))
}

// Apply compiles and executes an arbitrary mutation against the entity's
// table.
func (d *DAO) Apply(ctx context.Context, entityType string, mutation godao.Mutation) (*godao.MutationResult, error) {
	m, err := metadata.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	return d.apply(ctx, m, mutation)
}

func (d *DAO) apply(ctx context.Context, m *metadata.Metadata, mutation godao.Mutation) (*godao.MutationResult, error) {
	compiled, err := CompileMutation(m.Table, mutation, d.placeholder)
	if err != nil {
		return nil, err
	}
	res, err := d.exec.Exec(ctx, m.Name, compiled.SQL, compiled.Args)
	if err != nil {
		return nil, err
	}

	result := &godao.MutationResult{}
	if n, err := res.RowsAffected(); err == nil {
		result.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		result.LastInsertID = id
	}
	return result, nil
}

func entityValue(entity any) reflect.Value {
	v := reflect.ValueOf(entity)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return v
}

// columnValue extracts the stored value of a property: the field itself
// for columns, the target's id for to-one associations. To-many
// associations have no column on the owning table.
func columnValue(ev reflect.Value, p *metadata.Property) (any, bool) {
	switch p.Kind {
	case metadata.KindColumn:
		return ev.Field(p.Index).Interface(), true
	case metadata.KindToOne:
		f := ev.Field(p.Index)
		if f.IsNil() {
			return nil, true
		}
		target, err := p.Target()
		if err != nil {
			return nil, false
		}
		return f.Elem().Field(target.IDProperty().Index).Interface(), true
	default:
		return nil, false
	}
}
