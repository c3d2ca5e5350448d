package godao

// Operator represents a comparison operation in filters.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGe       Operator = "ge"
	OpLt       Operator = "lt"
	OpLe       Operator = "le"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpBetween  Operator = "between"
	OpPrefix   Operator = "prefix"   // string starts with
	OpSuffix   Operator = "suffix"   // string ends with
	OpContains Operator = "contains" // string contains
	OpLike     Operator = "like"     // SQL LIKE pattern
	OpILike    Operator = "ilike"    // case-insensitive LIKE
	OpIsNull   Operator = "isnull"
	OpNotNull  Operator = "notnull"

	// Logical combinators over nested filters.
	OpAnd Operator = "and"
	OpOr  Operator = "or"
	OpNot Operator = "not"
)

// Filter is a predicate over an entity property. Property is a dot-separated
// path that may traverse associations; the translator resolves it against
// entity metadata and joins as needed.
//
// For the logical operators OpAnd, OpOr and OpNot the Filters slice holds
// the nested predicates and Property/Value are unused. OpNot negates the
// AND-combination of its nested filters.
type Filter struct {
	Property string
	Op       Operator
	// Value holds a single comparison value, []any for OpIn/OpNotIn, or
	// [2]any for OpBetween.
	Value   any
	Filters []Filter
}

// Helper functions for creating filters

func Eq(property string, value any) Filter {
	return Filter{Property: property, Op: OpEq, Value: value}
}

func Ne(property string, value any) Filter {
	return Filter{Property: property, Op: OpNe, Value: value}
}

func Gt(property string, value any) Filter {
	return Filter{Property: property, Op: OpGt, Value: value}
}

func Ge(property string, value any) Filter {
	return Filter{Property: property, Op: OpGe, Value: value}
}

func Lt(property string, value any) Filter {
	return Filter{Property: property, Op: OpLt, Value: value}
}

func Le(property string, value any) Filter {
	return Filter{Property: property, Op: OpLe, Value: value}
}

func In(property string, values ...any) Filter {
	return Filter{Property: property, Op: OpIn, Value: values}
}

func NotIn(property string, values ...any) Filter {
	return Filter{Property: property, Op: OpNotIn, Value: values}
}

func Between(property string, from, to any) Filter {
	return Filter{Property: property, Op: OpBetween, Value: [2]any{from, to}}
}

func Prefix(property, value string) Filter {
	return Filter{Property: property, Op: OpPrefix, Value: value}
}

func Suffix(property, value string) Filter {
	return Filter{Property: property, Op: OpSuffix, Value: value}
}

func Contains(property, value string) Filter {
	return Filter{Property: property, Op: OpContains, Value: value}
}

func Like(property, pattern string) Filter {
	return Filter{Property: property, Op: OpLike, Value: pattern}
}

func ILike(property, pattern string) Filter {
	return Filter{Property: property, Op: OpILike, Value: pattern}
}

func IsNull(property string) Filter {
	return Filter{Property: property, Op: OpIsNull}
}

func NotNull(property string) Filter {
	return Filter{Property: property, Op: OpNotNull}
}

// And combines nested filters with AND.
func And(filters ...Filter) Filter {
	return Filter{Op: OpAnd, Filters: filters}
}

// Or combines nested filters with OR.
func Or(filters ...Filter) Filter {
	return Filter{Op: OpOr, Filters: filters}
}

// Not negates the AND-combination of the nested filters.
func Not(filters ...Filter) Filter {
	return Filter{Op: OpNot, Filters: filters}
}
