// Package memory provides an in-process DocumentStore used by the
// "memory" storage backend and by tests.
package memory
