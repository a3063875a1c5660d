// Package compose implements the hierarchical configuration resolution and
// composition engine: locating a configuration source relative to an
// ambiguous working context, materializing nested YAML structures into a
// single tree, applying dotlist overrides, and optionally validating the
// result against a typed schema.
//
// Composition is single-shot and deterministic: every failure is local and
// reproducible, and nothing is cached across invocations.
package compose
