package address

import "strings"

// Address uniquely identifies one target declared in a grid manifest.
type Address struct {
	// SpecPath is the slash-separated directory of the declaring manifest,
	// relative to the grid root. Empty for the grid root itself.
	SpecPath string
	// Name is the target's declared name, unique within its spec path.
	Name string
}

// New constructs an Address from a spec path and target name.
func New(specPath, name string) Address {
	return Address{SpecPath: specPath, Name: name}
}

// String serializes the Address into its canonical "spec/path:name" form.
func (a Address) String() string {
	var sb strings.Builder
	sb.WriteString(a.SpecPath)
	sb.WriteRune(':')
	sb.WriteString(a.Name)
	return sb.String()
}

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool {
	return a.SpecPath == "" && a.Name == ""
}
