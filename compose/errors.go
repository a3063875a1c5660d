package compose

import "fmt"

// NotFoundError is returned when no enabled resolution strategy can locate
// the requested configuration path, or an absolute path does not exist.
// Location always carries the original, un-resolved location string.
type NotFoundError struct {
	Location string
	Reason   string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration %q not found: %s", e.Location, e.Reason)
	}
	return fmt.Sprintf("configuration %q not found", e.Location)
}

// InvalidFormatError is returned when a file's contents could not be parsed
// as YAML by any available strategy, including the plain-document fallback.
type InvalidFormatError struct {
	Path string
	Err  error
}

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid configuration file %q: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying parser error.
func (e *InvalidFormatError) Unwrap() error { return e.Err }

// DuplicateKeyError is returned when two sibling entries in a directory tree
// collide on the same derived key, e.g. foo.yaml next to a foo/ directory.
type DuplicateKeyError struct {
	Key string
	Dir string
}

// Error implements the error interface for DuplicateKeyError.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate configuration key %q in directory %q", e.Key, e.Dir)
}

// ParseError is returned when a dotlist override string is malformed.
// Entry carries the offending string verbatim.
type ParseError struct {
	Entry  string
	Reason string
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed override %q: %s", e.Entry, e.Reason)
}

// MissingKeyError is returned when an override targets a path that does not
// exist in the base tree without using the '+' insert marker.
type MissingKeyError struct {
	Path string
}

// Error implements the error interface for MissingKeyError.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("override key %q not found in configuration; prefix with '+' to insert a new key", e.Path)
}

// MissingFieldError is returned when a schema-required field has no value in
// the merged tree and no declared default.
type MissingFieldError struct {
	Field string
}

// Error implements the error interface for MissingFieldError.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required configuration field %q", e.Field)
}

// TypeMismatchError is returned when a configuration value cannot be
// converted to the type the schema declares for its field.
type TypeMismatchError struct {
	Field string
	Want  string
	Got   any
}

// Error implements the error interface for TypeMismatchError.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("configuration field %q: expected %s, got %v (%T)", e.Field, e.Want, e.Got, e.Got)
}

// UnknownFieldError is returned under RejectUnknownFields when the merged
// tree contains a top-level key the schema does not declare.
type UnknownFieldError struct {
	Field string
}

// Error implements the error interface for UnknownFieldError.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("configuration field %q is not declared in the schema", e.Field)
}
