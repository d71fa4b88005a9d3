// Package session keeps snapshots of the user choices of an editing session
// that the script text does not carry: pinned variables, the execution
// trigger and target, and the poses of solids moved by manipulation.
//
// Snapshots are plain values; stores clone them on the way in and out.
package session
