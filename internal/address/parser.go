package address

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex validates target names and spec path segments.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// isValidSegment rejects names that are technically matched by the regex but
// would be ambiguous as path components.
func isValidSegment(name string) bool {
	if name == "." || name == ".." || name == "-" {
		return false
	}
	return true
}

// Parse creates an Address from its canonical "spec/path:name" string form.
// The spec path may be empty (":name" addresses a grid-root target); the
// name may not.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("address cannot be empty")
	}

	idx := strings.LastIndex(raw, ":")
	if idx < 0 {
		return Address{}, fmt.Errorf("address %q is missing the ':' separator", raw)
	}

	specPath, name := raw[:idx], raw[idx+1:]
	if name == "" {
		return Address{}, fmt.Errorf("address %q has an empty target name", raw)
	}
	if !nameRegex.MatchString(name) || !isValidSegment(name) {
		return Address{}, fmt.Errorf("invalid target name: %q", name)
	}

	if specPath != "" {
		for _, segment := range strings.Split(specPath, "/") {
			if segment == "" {
				return Address{}, fmt.Errorf("address %q contains an empty spec path segment", raw)
			}
			if !nameRegex.MatchString(segment) || !isValidSegment(segment) {
				return Address{}, fmt.Errorf("invalid spec path segment: %q", segment)
			}
		}
	}

	return Address{SpecPath: specPath, Name: name}, nil
}

// ResolveIn parses a dependency entry as written in a manifest, resolving
// the shorthand forms "name" and ":name" against the declaring manifest's
// spec path. Fully qualified entries are parsed as-is.
func ResolveIn(raw string, specPath string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("dependency entry cannot be empty")
	}
	if !strings.Contains(raw, ":") {
		raw = ":" + raw
	}
	if strings.HasPrefix(raw, ":") {
		raw = specPath + raw
	}
	return Parse(raw)
}
