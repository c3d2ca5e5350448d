package metadata

import (
	"fmt"
	"strings"

	godao "github.com/vincent3i/godao"
)

// PathSegment is one resolved segment of a dotted property path.
type PathSegment struct {
	// Meta is the metadata the segment's property belongs to.
	Meta *Metadata
	Prop *Property
	// Path is the dotted path up to and including this segment.
	Path string
}

// ResolvePath resolves a dot-separated property path against an entity,
// returning the ordered segments. Every segment except the last must be an
// association; any unknown segment fails with InvalidPathError.
func ResolvePath(m *Metadata, path string) ([]PathSegment, error) {
	if path == "" {
		return nil, godao.NewInvalidPathReason(m.Name, path, "empty property path")
	}

	parts := strings.Split(path, ".")
	segments := make([]PathSegment, 0, len(parts))
	cur := m
	for i, part := range parts {
		prop, ok := cur.Property(part)
		if !ok {
			return nil, godao.NewInvalidPathError(m.Name, path, part)
		}
		segments = append(segments, PathSegment{
			Meta: cur,
			Prop: prop,
			Path: strings.Join(parts[:i+1], "."),
		})
		if i == len(parts)-1 {
			break
		}
		if !prop.IsAssociation() {
			return nil, godao.NewInvalidPathReason(m.Name, path,
				fmt.Sprintf("segment %q is a column, not an association", part))
		}
		next, err := prop.Target()
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return segments, nil
}
