// Package interpreter runs scripts written in Starlark incrementally.
//
// The interpreter keeps a snapshot of the global variables before each top
// level statement. After an edit only the statements from the first changed
// one up to the execution target are run again, starting from the snapshot
// taken before it. Expression statements are kept as temporaries named after
// their line so they can be displayed like any other variable.
package interpreter
