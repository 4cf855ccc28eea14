// Package internaldefs holds the shared counter catalog consumed by the
// metric exporters. It exists so every export backend emits identical
// metric names and help strings.
package internaldefs

import (
	authcore "github.com/bengkelink/authcore"
)

// CounterDef binds a controller counter to its exported name.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs is the full exported counter catalog, one entry per
// controller counter.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricStartupRestored, Name: "authcore_startup_restored_total", Help: "Startups that restored a persisted session."},
	{ID: authcore.MetricStartupEmpty, Name: "authcore_startup_empty_total", Help: "Startups with no usable persisted session."},
	{ID: authcore.MetricStartupHealed, Name: "authcore_startup_healed_total", Help: "Startups that cleared a corrupt session record."},
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful logins."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricSignupCompleted, Name: "authcore_signup_completed_total", Help: "Signups that created an account and scheduled verification."},
	{ID: authcore.MetricSignupPending, Name: "authcore_signup_pending_total", Help: "Workshop signups left pending approval."},
	{ID: authcore.MetricSignupRejected, Name: "authcore_signup_rejected_total", Help: "Rejected signup attempts."},
	{ID: authcore.MetricVerificationCompleted, Name: "authcore_verification_completed_total", Help: "Deferred verifications that signed the user in."},
	{ID: authcore.MetricVerificationAbandoned, Name: "authcore_verification_abandoned_total", Help: "Deferred verifications that ended without a session."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logout operations."},
	{ID: authcore.MetricEmailConfirm, Name: "authcore_email_confirm_total", Help: "Email confirmation attempts."},
	{ID: authcore.MetricPasswordResetRequest, Name: "authcore_password_reset_request_total", Help: "Password reset requests."},
	{ID: authcore.MetricPasswordResetConfirm, Name: "authcore_password_reset_confirm_total", Help: "Password reset confirmations."},
}
