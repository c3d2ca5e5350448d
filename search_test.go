package godao

import (
	"reflect"
	"testing"
)

func TestSearchBuilderChain(t *testing.T) {
	s := NewSearch("Person").
		AddFilter(Eq("name", "Alice"), Gt("age", 30)).
		AddSortAsc("name").
		AddSortDesc("age").
		AddFetch("pets").
		SetFirstResult(10).
		SetMaxResults(25).
		SetDisjunction(true)

	if s.EntityType() != "Person" {
		t.Fatalf("entity type = %q, want Person", s.EntityType())
	}
	if len(s.Filters) != 2 {
		t.Fatalf("filters = %d, want 2", len(s.Filters))
	}
	if len(s.Sorts) != 2 || s.Sorts[0].Desc || !s.Sorts[1].Desc {
		t.Fatalf("unexpected sorts: %+v", s.Sorts)
	}
	if len(s.Fetches) != 1 || s.Fetches[0] != "pets" {
		t.Fatalf("unexpected fetches: %v", s.Fetches)
	}
	if s.FirstResult != 10 || s.MaxResults != 25 {
		t.Fatalf("paging = %d/%d, want 10/25", s.FirstResult, s.MaxResults)
	}
	if !s.Disjunction {
		t.Fatal("disjunction not set")
	}
}

func TestSetEntityTypeClears(t *testing.T) {
	s := NewSearch("Person")
	s.SetEntityType("")
	if s.EntityType() != "" {
		t.Fatalf("entity type = %q, want empty", s.EntityType())
	}
}

func TestFilterHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  Filter
		want Filter
	}{
		{"eq", Eq("name", "x"), Filter{Property: "name", Op: OpEq, Value: "x"}},
		{"ne", Ne("name", "x"), Filter{Property: "name", Op: OpNe, Value: "x"}},
		{"gt", Gt("age", 1), Filter{Property: "age", Op: OpGt, Value: 1}},
		{"ge", Ge("age", 1), Filter{Property: "age", Op: OpGe, Value: 1}},
		{"lt", Lt("age", 1), Filter{Property: "age", Op: OpLt, Value: 1}},
		{"le", Le("age", 1), Filter{Property: "age", Op: OpLe, Value: 1}},
		{"in", In("age", 1, 2), Filter{Property: "age", Op: OpIn, Value: []any{1, 2}}},
		{"notin", NotIn("age", 1), Filter{Property: "age", Op: OpNotIn, Value: []any{1}}},
		{"between", Between("age", 1, 9), Filter{Property: "age", Op: OpBetween, Value: [2]any{1, 9}}},
		{"prefix", Prefix("name", "A"), Filter{Property: "name", Op: OpPrefix, Value: "A"}},
		{"suffix", Suffix("name", "z"), Filter{Property: "name", Op: OpSuffix, Value: "z"}},
		{"contains", Contains("name", "li"), Filter{Property: "name", Op: OpContains, Value: "li"}},
		{"like", Like("name", "A%"), Filter{Property: "name", Op: OpLike, Value: "A%"}},
		{"ilike", ILike("name", "a%"), Filter{Property: "name", Op: OpILike, Value: "a%"}},
		{"isnull", IsNull("name"), Filter{Property: "name", Op: OpIsNull}},
		{"notnull", NotNull("name"), Filter{Property: "name", Op: OpNotNull}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Fatalf("got %+v, want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestLogicalFilterNesting(t *testing.T) {
	f := Or(
		And(Eq("name", "Alice"), Gt("age", 30)),
		Not(IsNull("email")),
	)
	if f.Op != OpOr || len(f.Filters) != 2 {
		t.Fatalf("unexpected top-level filter: %+v", f)
	}
	if f.Filters[0].Op != OpAnd || len(f.Filters[0].Filters) != 2 {
		t.Fatalf("unexpected and branch: %+v", f.Filters[0])
	}
	if f.Filters[1].Op != OpNot || len(f.Filters[1].Filters) != 1 {
		t.Fatalf("unexpected not branch: %+v", f.Filters[1])
	}
}

func TestSortHelpers(t *testing.T) {
	if s := Asc("name"); s.Desc || s.IgnoreCase {
		t.Fatalf("Asc: %+v", s)
	}
	if s := Desc("name"); !s.Desc || s.IgnoreCase {
		t.Fatalf("Desc: %+v", s)
	}
	if s := AscIgnoreCase("name"); s.Desc || !s.IgnoreCase {
		t.Fatalf("AscIgnoreCase: %+v", s)
	}
	if s := DescIgnoreCase("name"); !s.Desc || !s.IgnoreCase {
		t.Fatalf("DescIgnoreCase: %+v", s)
	}
}

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		got  Field
		want Aggregate
	}{
		{SelectField("name"), AggNone},
		{GroupBy("name"), AggGroupBy},
		{Count("id"), AggCount},
		{CountDistinct("id"), AggCountDistinct},
		{Sum("age"), AggSum},
		{Min("age"), AggMin},
		{Max("age"), AggMax},
		{Avg("age"), AggAvg},
	}
	for _, tt := range tests {
		if tt.got.Agg != tt.want {
			t.Fatalf("field %+v: agg = %q, want %q", tt.got, tt.got.Agg, tt.want)
		}
	}
}

func TestPagingPolicyNormalize(t *testing.T) {
	tests := []struct {
		name          string
		policy        PagingPolicy
		first, max    int
		wantF, wantM  int
	}{
		{"untouched", PagingPolicy{}, 5, 10, 5, 10},
		{"negative clamped", PagingPolicy{}, -1, -1, 0, 0},
		{"default applied", PagingPolicy{DefaultMaxResults: 50}, 0, 0, 0, 50},
		{"explicit kept", PagingPolicy{DefaultMaxResults: 50}, 0, 20, 0, 20},
		{"ceiling clamps", PagingPolicy{MaxMaxResults: 100}, 0, 500, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, m := tt.policy.Normalize(tt.first, tt.max)
			if f != tt.wantF || m != tt.wantM {
				t.Fatalf("Normalize(%d, %d) = %d, %d; want %d, %d",
					tt.first, tt.max, f, m, tt.wantF, tt.wantM)
			}
		})
	}
}
