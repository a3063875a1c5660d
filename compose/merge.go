package compose

import "strings"

// Merge deep-merges two configuration trees and returns the result as a new
// tree; neither input is mutated.
//
// Mapping merged with mapping recurses key by key. Any other type pairing,
// including sequence against anything, replaces the left value with the
// right one wholesale. The right-hand operand always wins conflicts.
func Merge(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = copyValue(value)
	}
	for key, value := range overlay {
		if baseChild, ok := merged[key].(map[string]any); ok {
			if overlayChild, ok := value.(map[string]any); ok {
				merged[key] = Merge(baseChild, overlayChild)
				continue
			}
		}
		merged[key] = copyValue(value)
	}
	return merged
}

// Apply applies an ordered override set on top of a base tree and returns
// the result as a new tree. Entries are applied in sequence, so a later
// entry for the same path wins. An entry whose path is not already present
// in the tree must carry the '+' insert marker, otherwise Apply fails with
// a MissingKeyError naming the dotted path.
func Apply(base map[string]any, set OverrideSet) (map[string]any, error) {
	tree := Merge(base, nil)
	for _, o := range set {
		if err := applyOverride(tree, o); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// applyOverride writes one override into tree, creating intermediate
// mappings only when the entry is forced.
func applyOverride(tree map[string]any, o Override) error {
	node := tree
	for i, segment := range o.Path[:len(o.Path)-1] {
		child, exists := node[segment]
		if childMap, ok := child.(map[string]any); ok {
			node = childMap
			continue
		}
		// Either the segment is absent or it names a non-mapping value;
		// descending requires the insert marker and replaces the value.
		if !o.Force {
			path := strings.Join(o.Path[:i+2], ".")
			if !exists {
				path = strings.Join(o.Path[:i+1], ".")
			}
			return &MissingKeyError{Path: path}
		}
		childMap := map[string]any{}
		node[segment] = childMap
		node = childMap
	}

	leaf := o.Path[len(o.Path)-1]
	if _, exists := node[leaf]; !exists && !o.Force {
		return &MissingKeyError{Path: o.Key()}
	}
	node[leaf] = copyValue(o.Value)
	return nil
}

// copyValue deep-copies a configuration value so merged trees never alias
// their sources.
func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, child := range v {
			copied[key] = copyValue(child)
		}
		return copied
	case []any:
		copied := make([]any, len(v))
		for i, child := range v {
			copied[i] = copyValue(child)
		}
		return copied
	default:
		return v
	}
}
