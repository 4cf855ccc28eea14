// Package directory is an embedded, in-memory implementation of the
// authcore Service interface: an account table guarded by a RWMutex,
// argon2id credential hashing, and HS256-signed single-purpose tokens for
// email verification and password reset.
//
// It backs single-process deployments, demos, and tests. Accounts do not
// survive a restart; production deployments point the controller at the
// remote service client instead.
package directory
