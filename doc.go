// Package authcore implements the client-side session and authentication
// state machine for the Bengkelink vehicle-service marketplace: a single
// owned session state (Loading, Unauthenticated, Authenticated), persistent
// session restore across restarts, role-aware login and signup flows, and a
// pure view-routing function for the application shell.
//
// The package is designed for concurrent embedding hosts: Controller
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Controller], [Builder],
// [Config], the [Store] and [Service] collaborator interfaces, and value
// types (State, Identity, Credentials). Persistence backends live under
// session/, the password policy and hashing under password/, and concrete
// Service implementations under directory/ (embedded) and remote/ (HTTP).
//
// # What this package must NOT do
//
//   - Talk to a network or a database directly; all I/O goes through the
//     Store and Service collaborators.
//   - Hand out mutable references to its session state; State snapshots
//     carry deep copies.
//   - Import any sub-package that re-imports authcore (no import cycles).
//
// # State contract
//
// The Controller is the single writer of session state. The startup
// transition out of Loading fires exactly once per controller lifetime,
// and Identity is non-nil exactly when the phase is Authenticated. Session
// records that fail to decode are cleared and treated as absence; a
// corrupt record can never wedge startup.
package authcore
