package sqlsearch

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/vincent3i/godao/metadata"
)

// scanEntities materializes entity rows from a compiled query. When the
// query fans out through a to-many join, rows are regrouped by root
// identity so every root entity appears exactly once, fetched children are
// deduplicated per parent, and paging is applied after the regrouping.
func scanEntities(rows *sql.Rows, q *CompiledQuery) ([]any, error) {
	idProp := q.Meta.IDProperty()
	plans := make(map[string]FetchPlan, len(q.Fetches))
	for _, p := range q.Fetches {
		plans[p.Path] = p
	}

	var out []any
	roots := make(map[any]reflect.Value)

	for rows.Next() {
		rootPtr := reflect.New(q.Meta.Type)
		instances := map[string]reflect.Value{"": rootPtr}
		validFlags := make(map[string]*bool, len(q.Fetches))
		for path := range plans {
			f := false
			validFlags[path] = &f
		}

		dests := make([]any, len(q.Scans))
		for i, sc := range q.Scans {
			inst, ok := instances[sc.FetchPath]
			if !ok {
				inst = reflect.New(plans[sc.FetchPath].Meta.Type)
				instances[sc.FetchPath] = inst
			}
			fs := &fieldScanner{dest: inst.Elem().Field(sc.Prop.Index)}
			if sc.FetchPath != "" && sc.Prop.PK {
				fs.valid = validFlags[sc.FetchPath]
			}
			dests[i] = fs
		}

		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}

		id := rootPtr.Elem().Field(idProp.Index).Interface()
		root := rootPtr
		if q.DistinctRoot {
			if existing, ok := roots[id]; ok {
				root = existing
			} else {
				roots[id] = rootPtr
				out = append(out, rootPtr.Interface())
			}
		} else {
			out = append(out, rootPtr.Interface())
		}

		// Attach fetched associations, parents before children. A path
		// whose target id scanned NULL produced no row on that branch.
		canonical := map[string]reflect.Value{"": root}
		for _, plan := range q.Fetches {
			if !*validFlags[plan.Path] {
				continue
			}
			parent, ok := canonical[plan.Parent]
			if !ok {
				continue
			}
			inst := instances[plan.Path]
			field := parent.Elem().Field(plan.Prop.Index)
			if plan.ToMany {
				childID := inst.Elem().Field(plan.Meta.IDProperty().Index).Interface()
				if existing, found := findChild(field, plan.Meta, childID); found {
					canonical[plan.Path] = existing
				} else {
					canonical[plan.Path] = appendChild(field, inst)
				}
			} else {
				if field.IsNil() {
					field.Set(inst)
				}
				canonical[plan.Path] = field
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if q.DistinctRoot {
		out = pageInMemory(out, q.FirstResult, q.MaxResults)
	}
	return out, nil
}

// scanTuples materializes projection rows. A single selected field yields
// bare values; multiple fields yield []any tuples in field order.
func scanTuples(rows *sql.Rows, q *CompiledQuery) ([]any, error) {
	var out []any
	for rows.Next() {
		dests := make([]any, q.NumColumns)
		for i := range dests {
			dests[i] = new(any)
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		vals := make([]any, q.NumColumns)
		for i := range vals {
			vals[i] = *(dests[i].(*any))
		}
		if q.NumColumns == 1 {
			out = append(out, vals[0])
		} else {
			out = append(out, vals)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func pageInMemory(rows []any, first, max int) []any {
	if first > 0 {
		if first >= len(rows) {
			return nil
		}
		rows = rows[first:]
	}
	if max > 0 && len(rows) > max {
		rows = rows[:max]
	}
	return rows
}

// findChild scans a slice field for an element with the given identifier,
// returning an addressable pointer to it. Linear, but child collections
// per parent are small.
func findChild(field reflect.Value, meta *metadata.Metadata, id any) (reflect.Value, bool) {
	idIdx := meta.IDProperty().Index
	for i := 0; i < field.Len(); i++ {
		el := field.Index(i)
		ptr := el
		if el.Kind() != reflect.Pointer {
			ptr = el.Addr()
		}
		if ptr.Elem().Field(idIdx).Interface() == id {
			return ptr, true
		}
	}
	return reflect.Value{}, false
}

// appendChild appends a child instance to a []T or []*T field and returns
// a pointer to the stored element.
func appendChild(field reflect.Value, child reflect.Value) reflect.Value {
	if field.Type().Elem().Kind() == reflect.Pointer {
		field.Set(reflect.Append(field, child))
		return child
	}
	field.Set(reflect.Append(field, child.Elem()))
	return field.Index(field.Len() - 1).Addr()
}

// fieldScanner adapts a struct field for database/sql scanning, tolerating
// NULLs from outer joins and converting driver values to the field's type.
type fieldScanner struct {
	dest  reflect.Value
	valid *bool
}

var _ sql.Scanner = (*fieldScanner)(nil)

func (f *fieldScanner) Scan(src any) error {
	if src == nil {
		f.dest.SetZero()
		return nil
	}
	if f.valid != nil {
		*f.valid = true
	}
	return assignValue(f.dest, src)
}

var scanTimeType = reflect.TypeOf(time.Time{})

// assignValue converts a driver value to the destination field's type.
// Drivers surface a small closed set of types (int64, float64, bool,
// []byte, string, time.Time).
func assignValue(dst reflect.Value, src any) error {
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := assignValue(p.Elem(), src); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	switch v := src.(type) {
	case int64:
		switch dst.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetInt(v)
			return nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			dst.SetUint(uint64(v))
			return nil
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(float64(v))
			return nil
		case reflect.Bool:
			dst.SetBool(v != 0)
			return nil
		}
	case float64:
		switch dst.Kind() {
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(v)
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetInt(int64(v))
			return nil
		}
	case bool:
		if dst.Kind() == reflect.Bool {
			dst.SetBool(v)
			return nil
		}
	case []byte:
		switch dst.Kind() {
		case reflect.String:
			dst.SetString(string(v))
			return nil
		case reflect.Slice:
			if dst.Type().Elem().Kind() == reflect.Uint8 {
				dst.SetBytes(append([]byte(nil), v...))
				return nil
			}
		}
	case string:
		if dst.Kind() == reflect.String {
			dst.SetString(v)
			return nil
		}
	case time.Time:
		if dst.Type() == scanTimeType {
			dst.Set(reflect.ValueOf(v))
			return nil
		}
	}

	sv := reflect.ValueOf(src)
	if sv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot scan %T into %s", src, dst.Type())
}
