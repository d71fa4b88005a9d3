// Package model defines the provider agnostic language model abstraction
// used by the script assistant.
//
// A Model turns a Request (instructions plus a short conversation) into a
// stream of Responses. Providers live in sub packages (anthropic, openai) so
// the assistant stays independent of vendor SDKs. MockModel answers from a
// table of canned completions and is meant for tests and examples.
package model
