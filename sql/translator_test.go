package sqlsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	godao "github.com/vincent3i/godao"
	"github.com/vincent3i/godao/metadata"
)

type Department struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"name"`
}

type Task struct {
	ID    int64  `db:"id,pk"`
	Title string `db:"title"`
	Done  bool   `db:"done"`
}

type Employee struct {
	ID         int64       `db:"id,pk"`
	Name       string      `db:"name"`
	Age        int         `db:"age"`
	Department *Department `db:"department_id"`
	Tasks      []Task      `fk:"employee_id"`
}

func init() {
	metadata.MustRegister(Employee{}, Department{}, Task{})
}

func TestTranslateBasicSelect(t *testing.T) {
	tr := NewTranslator()
	q, err := tr.Translate(godao.NewSearch("Employee"))
	require.NoError(t, err)

	assert.Equal(t, "SELECT t0.id, t0.name, t0.age FROM employees t0", q.SQL)
	assert.Empty(t, q.Args)
	assert.False(t, q.Projection)
	assert.False(t, q.DistinctRoot)
	assert.Len(t, q.Scans, 3)
}

func TestTranslateFilterAndSort(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").
		AddFilter(godao.Ge("age", 30)).
		AddSortAsc("name")

	q, err := tr.Translate(s)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.id, t0.name, t0.age FROM employees t0 WHERE t0.age >= $1 ORDER BY t0.name ASC",
		q.SQL)
	assert.Equal(t, []any{30}, q.Args)
}

func TestTranslateConjunctionAndDisjunction(t *testing.T) {
	tr := NewTranslator()

	s := godao.NewSearch("Employee").
		AddFilter(godao.Ge("age", 30), godao.Eq("name", "Alice"))
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "WHERE (t0.age >= $1 AND t0.name = $2)")

	s.SetDisjunction(true)
	q, err = tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "WHERE (t0.age >= $1 OR t0.name = $2)")
}

func TestTranslateNestedLogic(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddFilter(
		godao.Or(
			godao.Eq("name", "Alice"),
			godao.And(godao.Ge("age", 30), godao.Lt("age", 40)),
		),
	)
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "WHERE (t0.name = $1 OR (t0.age >= $2 AND t0.age < $3))")
	assert.Equal(t, []any{"Alice", 30, 40}, q.Args)
}

func TestTranslateNot(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddFilter(godao.Not(godao.Eq("name", "Bob")))
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "WHERE NOT (t0.name = $1)")
}

func TestTranslateAssociationFilterJoins(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddFilter(godao.Eq("department.name", "Engineering"))
	q, err := tr.Translate(s)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.id, t0.name, t0.age FROM employees t0 "+
			"LEFT JOIN departments a1 ON t0.department_id = a1.id "+
			"WHERE a1.name = $1",
		q.SQL)
	assert.False(t, q.DistinctRoot)
}

func TestTranslateAliasReuse(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").
		AddFilter(godao.Eq("department.name", "Engineering")).
		AddSortAsc("department.name")
	q, err := tr.Translate(s)
	require.NoError(t, err)

	// one join for both the filter and the sort
	assert.Equal(t, 1, countOccurrences(q.SQL, "LEFT JOIN"))
	assert.Contains(t, q.SQL, "ORDER BY a1.name ASC")
}

func TestTranslateToManyFilterFansOut(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").
		AddFilter(godao.Eq("tasks.done", true)).
		SetMaxResults(10)
	q, err := tr.Translate(s)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "LEFT JOIN tasks a1 ON a1.employee_id = t0.id")
	assert.True(t, q.DistinctRoot)
	assert.NotContains(t, q.SQL, "LIMIT")
	assert.Equal(t, 10, q.MaxResults)
}

func TestTranslatePagingAsBindArgs(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").SetFirstResult(5).SetMaxResults(10)
	q, err := tr.Translate(s)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{10, 5}, q.Args)
}

func TestTranslatePagingPolicyDefault(t *testing.T) {
	tr := NewTranslator(WithPagingPolicy(godao.PagingPolicy{DefaultMaxResults: 100}))
	q, err := tr.Translate(godao.NewSearch("Employee"))
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "LIMIT $1")
	assert.Equal(t, []any{100}, q.Args)
}

func TestTranslateStringOperators(t *testing.T) {
	tr := NewTranslator()

	tests := []struct {
		filter   godao.Filter
		wantSQL  string
		wantArgs []any
	}{
		{godao.Prefix("name", "Al"), "t0.name LIKE $1", []any{"Al%"}},
		{godao.Suffix("name", "ce"), "t0.name LIKE $1", []any{"%ce"}},
		{godao.Contains("name", "li"), "t0.name LIKE $1", []any{"%li%"}},
		{godao.Like("name", "A_i%"), "t0.name LIKE $1", []any{"A_i%"}},
		{godao.ILike("name", "al%"), "LOWER(t0.name) LIKE LOWER($1)", []any{"al%"}},
	}
	for _, tt := range tests {
		s := godao.NewSearch("Employee").AddFilter(tt.filter)
		q, err := tr.Translate(s)
		require.NoError(t, err)
		assert.Contains(t, q.SQL, tt.wantSQL)
		assert.Equal(t, tt.wantArgs, q.Args)
	}
}

func TestTranslateInOperators(t *testing.T) {
	tr := NewTranslator()

	s := godao.NewSearch("Employee").AddFilter(godao.In("age", 30, 40, 50))
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "t0.age IN ($1, $2, $3)")

	s = godao.NewSearch("Employee").AddFilter(godao.NotIn("age", 30))
	q, err = tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "t0.age NOT IN ($1)")

	// empty IN matches nothing, empty NOT IN matches everything
	s = godao.NewSearch("Employee").AddFilter(godao.In("age"))
	q, err = tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "WHERE 1=0")

	s = godao.NewSearch("Employee").AddFilter(godao.NotIn("age"))
	q, err = tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "WHERE 1=1")
}

func TestTranslateBetween(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddFilter(godao.Between("age", 30, 40))
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "t0.age BETWEEN $1 AND $2")
	assert.Equal(t, []any{30, 40}, q.Args)
}

func TestTranslateNullChecksOnToOne(t *testing.T) {
	tr := NewTranslator()

	s := godao.NewSearch("Employee").AddFilter(godao.IsNull("department"))
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "t0.department_id IS NULL")
	assert.NotContains(t, q.SQL, "LEFT JOIN")

	// comparing a to-one association itself is invalid
	s = godao.NewSearch("Employee").AddFilter(godao.Eq("department", 1))
	_, err = tr.Translate(s)
	assert.True(t, godao.IsInvalidPathError(err))
}

func TestTranslateSortIgnoreCase(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddSort(godao.DescIgnoreCase("name"))
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "ORDER BY LOWER(t0.name) DESC")
}

func TestTranslateSortThroughToManyRejected(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddSortAsc("tasks.title")
	_, err := tr.Translate(s)
	assert.True(t, godao.IsInvalidPathError(err))
}

func TestTranslateFetchToOne(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddFetch("department")
	q, err := tr.Translate(s)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.id, t0.name, t0.age, a1.id, a1.name FROM employees t0 "+
			"LEFT JOIN departments a1 ON t0.department_id = a1.id",
		q.SQL)
	require.Len(t, q.Fetches, 1)
	assert.Equal(t, "department", q.Fetches[0].Path)
	assert.False(t, q.Fetches[0].ToMany)
	assert.False(t, q.DistinctRoot)
}

func TestTranslateFetchToManyTriggersDistinctRoot(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddFetch("tasks").SetMaxResults(2)
	q, err := tr.Translate(s)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "LEFT JOIN tasks a1 ON a1.employee_id = t0.id")
	assert.True(t, q.DistinctRoot)
	assert.Equal(t, 2, q.MaxResults)
	assert.NotContains(t, q.SQL, "LIMIT")
	require.Len(t, q.Fetches, 1)
	assert.True(t, q.Fetches[0].ToMany)
}

func TestTranslateFetchColumnRejected(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddFetch("name")
	_, err := tr.Translate(s)
	assert.True(t, godao.IsInvalidPathError(err))
}

func TestTranslateProjectionGroupBy(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddField(
		godao.GroupBy("department.name"),
		godao.Count("*"),
	)
	q, err := tr.Translate(s)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT a1.name, COUNT(*) FROM employees t0 "+
			"LEFT JOIN departments a1 ON t0.department_id = a1.id "+
			"GROUP BY a1.name",
		q.SQL)
	assert.True(t, q.Projection)
	assert.Equal(t, 2, q.NumColumns)
}

func TestTranslateAggregates(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddField(
		godao.Sum("age"),
		godao.Min("age"),
		godao.Max("age"),
		godao.Avg("age"),
		godao.CountDistinct("name"),
	)
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL,
		"SELECT SUM(t0.age), MIN(t0.age), MAX(t0.age), AVG(t0.age), COUNT(DISTINCT t0.name)")
}

func TestTranslatePlainProjection(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddField(
		godao.SelectField("name"),
		godao.SelectField("age"),
	)
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Equal(t, "SELECT t0.name, t0.age FROM employees t0", q.SQL)
}

func TestTranslateInvalidProjectionMix(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").AddField(
		godao.SelectField("name"),
		godao.Sum("age"),
	)
	_, err := tr.Translate(s)
	assert.True(t, godao.IsInvalidProjectionError(err))
}

func TestTranslateCount(t *testing.T) {
	tr := NewTranslator()
	s := godao.NewSearch("Employee").
		AddFilter(godao.Ge("age", 30)).
		AddSortAsc("name").
		AddFetch("tasks").
		SetMaxResults(10)

	q, err := tr.TranslateCount(s)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(DISTINCT t0.id) FROM employees t0 WHERE t0.age >= $1",
		q.SQL)
	assert.Equal(t, []any{30}, q.Args)
}

func TestTranslateErrors(t *testing.T) {
	tr := NewTranslator()

	_, err := tr.Translate(nil)
	assert.ErrorIs(t, err, godao.ErrNullSearch)

	_, err = tr.Translate(godao.NewSearch(""))
	assert.True(t, godao.IsMetadataError(err))

	_, err = tr.Translate(godao.NewSearch("Unknown"))
	assert.True(t, godao.IsMetadataError(err))

	s := godao.NewSearch("Employee").AddFilter(godao.Eq("nope", 1))
	_, err = tr.Translate(s)
	assert.True(t, godao.IsInvalidPathError(err))
}

func TestTranslatorPlaceholderOption(t *testing.T) {
	tr := NewTranslator(WithPlaceholder(func(int) string { return "?" }))
	s := godao.NewSearch("Employee").AddFilter(godao.Ge("age", 30))
	q, err := tr.Translate(s)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "WHERE t0.age >= ?")
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
