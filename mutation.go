package godao

// Mutation is a marker interface for the thin write pass-throughs exposed
// alongside the search operations.
type Mutation interface{ isMutation() }

// Insert represents an insert operation with column values.
type Insert struct {
	Values map[string]any
}

func (Insert) isMutation() {}

// Update represents an update with SET values and a WHERE filter. The
// filters are combined with AND and must use simple (non-nested, non-path)
// properties.
type Update struct {
	Set   map[string]any
	Where []Filter
}

func (Update) isMutation() {}

// Delete represents a delete with a WHERE filter.
type Delete struct {
	Where []Filter
}

func (Delete) isMutation() {}

// CompiledMutation is a mutation rendered to SQL with arguments.
type CompiledMutation struct {
	SQL  string
	Args []any
}

// MutationResult carries execution metadata for a mutation.
type MutationResult struct {
	RowsAffected int64
	LastInsertID int64
}

// Helper constructors

func NewInsert(values map[string]any) Insert { return Insert{Values: values} }

func NewUpdate(set map[string]any, where ...Filter) Update {
	return Update{Set: set, Where: where}
}

func NewDelete(where ...Filter) Delete { return Delete{Where: where} }
