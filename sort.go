package godao

// Sort defines ordering on a property path. Sorting through a to-many
// association is invalid and rejected at translation time.
type Sort struct {
	Property string
	Desc     bool
	// IgnoreCase sorts string values case-insensitively.
	IgnoreCase bool
}

// Helper functions for creating sorts

func Asc(property string) Sort {
	return Sort{Property: property}
}

func Desc(property string) Sort {
	return Sort{Property: property, Desc: true}
}

func AscIgnoreCase(property string) Sort {
	return Sort{Property: property, IgnoreCase: true}
}

func DescIgnoreCase(property string) Sort {
	return Sort{Property: property, Desc: true, IgnoreCase: true}
}
