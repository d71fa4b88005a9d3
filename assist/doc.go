// Package assist asks a language model for script statements.
//
// A Generator renders a prompt from the user request and the variables of
// the current script, sends it to a model.Model and returns the code of the
// answer with any markdown fences removed. The number of model calls is
// bounded by a Limiter.
package assist
