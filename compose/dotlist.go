package compose

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Override is one parsed dotlist entry: a dotted key path, the value it
// carries, and whether the entry used the '+' marker that permits inserting
// a key absent from the base tree.
type Override struct {
	Path  []string
	Value any
	Force bool
}

// Key returns the dotted form of the override's path.
func (o Override) Key() string {
	return strings.Join(o.Path, ".")
}

// OverrideSet is an ordered sequence of overrides. Later entries win on key
// collision when the set is applied.
type OverrideSet []Override

// AsTree folds the set into a sparse override tree, later entries winning.
func (s OverrideSet) AsTree() map[string]any {
	tree := map[string]any{}
	for _, o := range s {
		node := tree
		for _, segment := range o.Path[:len(o.Path)-1] {
			child, ok := node[segment].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[segment] = child
			}
			node = child
		}
		node[o.Path[len(o.Path)-1]] = o.Value
	}
	return tree
}

// ParseOverrides parses CLI-style `key.path=value` strings into an ordered
// OverrideSet. A leading '+' marks the entry as a new-key insertion; the
// permission itself is enforced when the set is applied, not here. Values
// use the YAML scalar grammar, so `3`, `3.5`, `true`, `null`, `[1, 2]` and
// quoted strings all parse as expected, with unquoted strings as the
// fallback. Malformed entries fail with a ParseError quoting the entry
// verbatim.
func ParseOverrides(params []string) (OverrideSet, error) {
	set := make(OverrideSet, 0, len(params))
	for _, entry := range params {
		key, rawValue, found := strings.Cut(entry, "=")
		if !found {
			return nil, &ParseError{Entry: entry, Reason: "missing '='"}
		}

		force := strings.HasPrefix(key, "+")
		if force {
			key = key[1:]
		}
		if key == "" {
			return nil, &ParseError{Entry: entry, Reason: "empty key"}
		}

		segments := strings.Split(key, ".")
		for _, segment := range segments {
			if segment == "" {
				return nil, &ParseError{Entry: entry, Reason: "key path contains empty segment"}
			}
		}

		set = append(set, Override{Path: segments, Value: parseOverrideValue(rawValue), Force: force})
	}
	return set, nil
}

// parseOverrideValue interprets the right-hand side of an override with the
// YAML scalar grammar. Anything YAML refuses outright is kept as the
// literal string, matching how shells hand us unquoted words.
func parseOverrideValue(raw string) any {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
