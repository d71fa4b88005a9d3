// Package core provides the foundational domain types and contracts used by
// livecad. It defines:
//
//   - Script data (Document, Span, Location, Locations, Environment, NameSet)
//   - Derived scene state (Ownership, Scene, Selection, Highlights)
//   - Collaborator contracts (Evaluator, Kernel, Solid, Kinematic)
//   - View contracts and the Views fan-out
//   - Session, the explicit context shared by every component
//   - Event records appended to the session history
//
// The package keeps behavior out of scope: the scheduler, dependency tracker,
// display rules, manipulation protocol and selection manager live in their
// own packages and communicate only through a *Session. Each Session field
// documents the single component allowed to write it.
package core
