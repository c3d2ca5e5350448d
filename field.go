package godao

// Aggregate represents an aggregate operator applied to a selected field.
type Aggregate string

const (
	AggNone          Aggregate = ""
	AggCount         Aggregate = "count"
	AggCountDistinct Aggregate = "count_distinct"
	AggSum           Aggregate = "sum"
	AggMin           Aggregate = "min"
	AggMax           Aggregate = "max"
	AggAvg           Aggregate = "avg"
	// AggGroupBy marks a plain field as a grouping key. Required on every
	// non-aggregate field once any aggregate field is selected.
	AggGroupBy Aggregate = "group_by"
)

// Field selects a property path for projection, optionally through an
// aggregate operator. Selecting any field switches the search from entity
// results to tuple results.
type Field struct {
	Property string
	Agg      Aggregate
}

// Helper functions for creating fields

func SelectField(property string) Field {
	return Field{Property: property}
}

func GroupBy(property string) Field {
	return Field{Property: property, Agg: AggGroupBy}
}

func Count(property string) Field {
	return Field{Property: property, Agg: AggCount}
}

func CountDistinct(property string) Field {
	return Field{Property: property, Agg: AggCountDistinct}
}

func Sum(property string) Field {
	return Field{Property: property, Agg: AggSum}
}

func Min(property string) Field {
	return Field{Property: property, Agg: AggMin}
}

func Max(property string) Field {
	return Field{Property: property, Agg: AggMax}
}

func Avg(property string) Field {
	return Field{Property: property, Agg: AggAvg}
}
