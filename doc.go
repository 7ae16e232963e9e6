// Package taxform turns a regulator-published taxonomy — schema, label,
// structure, and rule files — into a queryable questionnaire model, accepts
// typed answers against it, and serializes them into a namespaced XML
// instance document.
//
// Loading is all-or-nothing and pure: a Questionnaire, once built, is
// immutable and safe for concurrent reads. Submissions are mutable answer
// containers and need external synchronization if shared across goroutines.
package taxform
