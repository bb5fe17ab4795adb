// Package validate provides field-level validators for data crossing the
// storage and API boundaries.
//
// Unlike assertion-style checks, every validator returns the full list of
// violations it found so a caller sees all problems in one pass. Primitives
// compose by concatenation; Array namespaces element errors by index, and
// Must adapts a list-returning validator into an error-returning one for
// call sites that want a single failure value.
package validate
