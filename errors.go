package authcore

import "errors"

var (
	// ErrPasswordMismatch is returned by Signup when password and
	// confirmation differ. Detected locally, before any collaborator call.
	ErrPasswordMismatch = errors.New("password and confirmation do not match")
	// ErrWeakPassword is returned by Signup when the password fails the
	// strength policy. Detected locally, before any collaborator call.
	ErrWeakPassword = errors.New("password does not satisfy strength policy")
	// ErrTermsNotAccepted is returned by Signup when the terms checkbox was
	// not accepted.
	ErrTermsNotAccepted = errors.New("terms of service not accepted")
	// ErrInvalidCredentials is returned by Login when the collaborator
	// rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrServiceUnavailable is returned when the collaborator cannot be
	// reached or fails internally. Callers may retry.
	ErrServiceUnavailable = errors.New("auth service unavailable")
	// ErrTimeout is returned when a collaborator call exceeds the configured
	// service timeout.
	ErrTimeout = errors.New("auth service timeout")
	// ErrVerificationInvalid is returned by VerifyEmail for an unknown,
	// expired, or already-consumed verification token.
	ErrVerificationInvalid = errors.New("verification token invalid")
	// ErrResetInvalid is returned by ResetPassword for an unknown or expired
	// reset token.
	ErrResetInvalid = errors.New("password reset token invalid")
	// ErrRoleUnknown is returned for a role outside the three marketplace
	// roles.
	ErrRoleUnknown = errors.New("unknown role")
	// ErrAccountExists is returned by Signup when the email, username, or
	// partnership number is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrIdentityInvalid marks an identity that violates the role/variant
	// invariants. The session store treats a persisted record failing this
	// check as corrupt and self-heals.
	ErrIdentityInvalid = errors.New("identity record invalid")
	// ErrIdentifierMissing is returned by Login when the credentials carry
	// no identifier usable for the given role.
	ErrIdentifierMissing = errors.New("login identifier missing")
	// ErrControllerNotReady is returned by user-initiated operations invoked
	// before the startup transition has resolved.
	ErrControllerNotReady = errors.New("controller not initialized")
	// ErrControllerClosed is returned by operations invoked after Close.
	ErrControllerClosed = errors.New("controller closed")
)
