// Package password provides the marketplace password strength policy and
// argon2id hashing in PHC string format.
//
// Policy validation and hashing are deliberately separate: the controller
// validates against [Policy] before any collaborator call, while hashing is
// a concern of Service implementations that store credentials themselves.
package password
