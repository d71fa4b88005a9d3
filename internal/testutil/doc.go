// Package testutil contains fakes and builders shared by the package tests:
// a scripted evaluator, kernel doubles with solve counters, a recording view,
// a scripted picker and a session builder. They are not intended for
// production usage.
package testutil
