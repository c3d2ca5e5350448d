package sqlsearch

import (
	"fmt"
	"sort"
	"strings"

	godao "github.com/vincent3i/godao"
)

// CompileMutation compiles a mutation against a table. Map-based values
// are emitted in sorted column order so the generated SQL is
// deterministic. Mutation filters address columns directly; association
// paths are a search concern.
func CompileMutation(table string, mutation godao.Mutation, placeholder func(n int) string) (*godao.CompiledMutation, error) {
	c := &mutationCompiler{placeholder: placeholder}
	switch m := mutation.(type) {
	case godao.Insert:
		return c.compileInsert(table, m)
	case godao.Update:
		return c.compileUpdate(table, m)
	case godao.Delete:
		return c.compileDelete(table, m)
	default:
		return nil, fmt.Errorf("unsupported mutation type: %T", mutation)
	}
}

type mutationCompiler struct {
	placeholder func(n int) string
	args        []any
}

func (c *mutationCompiler) arg(v any) string {
	c.args = append(c.args, v)
	return c.placeholder(len(c.args))
}

func sortedColumns(m map[string]any) []string {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func (c *mutationCompiler) compileInsert(table string, insert godao.Insert) (*godao.CompiledMutation, error) {
	if len(insert.Values) == 0 {
		return nil, fmt.Errorf("insert values cannot be empty")
	}

	cols := sortedColumns(insert.Values)
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = c.arg(insert.Values[col])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	return &godao.CompiledMutation{SQL: sql, Args: c.args}, nil
}

func (c *mutationCompiler) compileUpdate(table string, update godao.Update) (*godao.CompiledMutation, error) {
	if len(update.Set) == 0 {
		return nil, fmt.Errorf("update set values cannot be empty")
	}

	cols := sortedColumns(update.Set)
	setParts := make([]string, len(cols))
	for i, col := range cols {
		setParts[i] = fmt.Sprintf("%s = %s", col, c.arg(update.Set[col]))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(setParts, ", "))

	if len(update.Where) > 0 {
		where, err := c.compileConditions(update.Where)
		if err != nil {
			return nil, err
		}
		sql += " WHERE " + where
	}

	return &godao.CompiledMutation{SQL: sql, Args: c.args}, nil
}

func (c *mutationCompiler) compileDelete(table string, del godao.Delete) (*godao.CompiledMutation, error) {
	sql := fmt.Sprintf("DELETE FROM %s", table)

	if len(del.Where) > 0 {
		where, err := c.compileConditions(del.Where)
		if err != nil {
			return nil, err
		}
		sql += " WHERE " + where
	}

	return &godao.CompiledMutation{SQL: sql, Args: c.args}, nil
}

// compileConditions renders mutation filters, all ANDed together.
func (c *mutationCompiler) compileConditions(filters []godao.Filter) (string, error) {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if strings.Contains(f.Property, ".") {
			return "", fmt.Errorf("mutation filter %q: association paths are not supported in mutations", f.Property)
		}
		part, err := c.compileCondition(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " AND "), nil
}

func (c *mutationCompiler) compileCondition(f godao.Filter) (string, error) {
	col := f.Property
	switch f.Op {
	case godao.OpEq:
		return fmt.Sprintf("%s = %s", col, c.arg(f.Value)), nil
	case godao.OpNe:
		return fmt.Sprintf("%s <> %s", col, c.arg(f.Value)), nil
	case godao.OpGt:
		return fmt.Sprintf("%s > %s", col, c.arg(f.Value)), nil
	case godao.OpGe:
		return fmt.Sprintf("%s >= %s", col, c.arg(f.Value)), nil
	case godao.OpLt:
		return fmt.Sprintf("%s < %s", col, c.arg(f.Value)), nil
	case godao.OpLe:
		return fmt.Sprintf("%s <= %s", col, c.arg(f.Value)), nil
	case godao.OpIn:
		vals := flattenValues(f.Value)
		if len(vals) == 0 {
			return "1=0", nil
		}
		ph := make([]string, len(vals))
		for i, v := range vals {
			ph[i] = c.arg(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(ph, ", ")), nil
	case godao.OpIsNull:
		return col + " IS NULL", nil
	case godao.OpNotNull:
		return col + " IS NOT NULL", nil
	default:
		return "", fmt.Errorf("mutation filter %q: unsupported operator %q", f.Property, f.Op)
	}
}
