// Package script stores script sources by name.
//
// Store is implemented by InMemoryStore, for tests and examples, and by
// FileStore, which reads and writes files below a root directory. Only script
// extensions (.py, .star, .txt) are accepted unless the caller forces the
// write, so a typo does not overwrite an unrelated file.
package script
