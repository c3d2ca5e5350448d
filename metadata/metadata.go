// Package metadata derives per-entity mapping metadata from struct types.
//
// Each registered entity exposes its table name, identifier property and a
// classification of every mapped property as a simple column, a to-one
// association or a to-many association. Derivation is pure, so the global
// registry caches results process-wide and is safe for concurrent use.
//
// Mapping conventions:
//
//	type Person struct {
//		ID   int64  `db:"id,pk"`
//		Name string `db:"name"`
//		Home *Home  `db:"home_id"`          // to-one, FK on persons
//		Pets []Pet  `fk:"person_id"`        // to-many, FK on pets
//	}
//
// A pointer-to-struct field with a db tag maps a to-one association whose
// foreign key column lives on the owning table. A slice-of-struct field
// with an fk tag maps a to-many association whose foreign key column lives
// on the target table. Fields tagged `db:"-"`, untagged fields and
// unexported fields are ignored.
package metadata

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	godao "github.com/vincent3i/godao"
)

// Kind classifies a mapped property.
type Kind int

const (
	KindColumn Kind = iota
	KindToOne
	KindToMany
)

func (k Kind) String() string {
	switch k {
	case KindToOne:
		return "to-one"
	case KindToMany:
		return "to-many"
	default:
		return "column"
	}
}

// Property describes one mapped property of an entity.
type Property struct {
	// Name is the property name used in search paths.
	Name string
	// Column is the mapped column: the value column for KindColumn, the
	// foreign key on the owning table for KindToOne, or the foreign key
	// on the target table for KindToMany.
	Column string
	Kind   Kind
	PK     bool
	// Index is the struct field index within the entity type.
	Index int

	target reflect.Type
}

// IsAssociation reports whether the property traverses to another entity.
func (p *Property) IsAssociation() bool { return p.Kind != KindColumn }

// Target returns the metadata of the association target type. The target
// must itself be registered.
func (p *Property) Target() (*Metadata, error) {
	if p.target == nil {
		return nil, godao.NewMetadataError(p.Name, "property is not an association")
	}
	return lookupType(p.target)
}

// Metadata describes one registered entity type.
type Metadata struct {
	// Name identifies the entity in searches, e.g. "Person".
	Name  string
	Table string
	Type  reflect.Type

	props map[string]*Property
	order []*Property
	id    *Property
}

// IDProperty returns the identifier property.
func (m *Metadata) IDProperty() *Property { return m.id }

// Property looks up a property by its search-path name.
func (m *Metadata) Property(name string) (*Property, bool) {
	p, ok := m.props[name]
	return p, ok
}

// Properties returns all mapped properties in declaration order.
func (m *Metadata) Properties() []*Property { return m.order }

// Columns returns the simple column properties in declaration order.
func (m *Metadata) Columns() []*Property {
	cols := make([]*Property, 0, len(m.order))
	for _, p := range m.order {
		if p.Kind == KindColumn {
			cols = append(cols, p)
		}
	}
	return cols
}

// New allocates a fresh instance of the entity type and returns a pointer
// to it.
func (m *Metadata) New() any {
	return reflect.New(m.Type).Interface()
}

// TableNamer lets an entity override the derived table name.
type TableNamer interface {
	TableName() string
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()
)

// derive builds metadata for a struct type. It fails with MetadataError
// when the type is not a struct or carries no primary key column.
func derive(t reflect.Type) (*Metadata, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, godao.NewMetadataError(t.String(), "entity must be a struct type")
	}

	m := &Metadata{
		Name:  t.Name(),
		Table: tableName(t),
		Type:  t,
		props: make(map[string]*Property),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Anonymous {
			continue
		}
		dbTag := f.Tag.Get("db")
		if dbTag == "-" {
			continue
		}
		column, opts := parseTag(dbTag)

		var prop *Property
		switch {
		case isToMany(f.Type):
			fk := f.Tag.Get("fk")
			if fk == "" {
				continue
			}
			prop = &Property{
				Name:   propertyName(f.Name),
				Column: fk,
				Kind:   KindToMany,
				Index:  i,
				target: sliceElem(f.Type),
			}
		case isToOne(f.Type):
			if column == "" {
				continue
			}
			prop = &Property{
				Name:   propertyName(f.Name),
				Column: column,
				Kind:   KindToOne,
				Index:  i,
				target: f.Type.Elem(),
			}
		default:
			if column == "" {
				continue
			}
			prop = &Property{
				Name:   column,
				Column: column,
				Kind:   KindColumn,
				PK:     hasOption(opts, "pk"),
				Index:  i,
			}
		}

		if _, dup := m.props[prop.Name]; dup {
			return nil, godao.NewMetadataError(m.Name, "duplicate property "+prop.Name)
		}
		m.props[prop.Name] = prop
		m.order = append(m.order, prop)
		if prop.PK {
			if m.id != nil {
				return nil, godao.NewMetadataError(m.Name, "multiple pk columns")
			}
			m.id = prop
		}
	}

	if m.id == nil {
		return nil, godao.NewMetadataError(m.Name, "no pk column mapped")
	}
	return m, nil
}

func isToOne(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct && t.Elem() != timeType
}

func isToMany(t reflect.Type) bool {
	if t.Kind() != reflect.Slice {
		return false
	}
	return sliceElem(t) != nil
}

// sliceElem returns the struct type of a to-many slice ([]T or []*T), or
// nil for non-entity slices such as []byte.
func sliceElem(t reflect.Type) reflect.Type {
	e := t.Elem()
	if e.Kind() == reflect.Pointer {
		e = e.Elem()
	}
	if e.Kind() == reflect.Struct && e != timeType {
		return e
	}
	return nil
}

func tableName(t reflect.Type) string {
	if reflect.PointerTo(t).Implements(tableNamerType) {
		return reflect.New(t).Interface().(TableNamer).TableName()
	}
	return snakeCase(t.Name()) + "s"
}

func parseTag(tag string) (name string, opts []string) {
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func hasOption(opts []string, opt string) bool {
	for _, o := range opts {
		if o == opt {
			return true
		}
	}
	return false
}

func propertyName(fieldName string) string {
	r := []rune(fieldName)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
