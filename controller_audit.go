package authcore

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventStartupRestored      = "startup_session_restored"
	auditEventStartupEmpty         = "startup_no_session"
	auditEventStartupHealed        = "startup_corrupt_session_healed"
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventSignupCompleted      = "signup_completed"
	auditEventSignupPending        = "signup_pending_approval"
	auditEventSignupFailure        = "signup_failure"
	auditEventVerificationDone     = "verification_completed"
	auditEventVerificationDropped  = "verification_abandoned"
	auditEventLogout               = "logout"
	auditEventEmailConfirm         = "email_confirm"
	auditEventPasswordResetRequest = "password_reset_request"
	auditEventPasswordResetConfirm = "password_reset_confirm"
)

func auditErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPasswordMismatch):
		return "password_mismatch"
	case errors.Is(err, ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, ErrTermsNotAccepted):
		return "terms_not_accepted"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountExists):
		return "account_exists"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, ErrVerificationInvalid):
		return "verification_invalid"
	case errors.Is(err, ErrResetInvalid):
		return "reset_invalid"
	case errors.Is(err, ErrRoleUnknown):
		return "role_unknown"
	case errors.Is(err, ErrIdentifierMissing):
		return "identifier_missing"
	case errors.Is(err, ErrIdentityInvalid):
		return "identity_invalid"
	case errors.Is(err, ErrControllerNotReady):
		return "not_ready"
	case errors.Is(err, ErrControllerClosed):
		return "closed"
	default:
		return "internal_error"
	}
}

func (c *Controller) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	id *Identity,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Phase:     c.State().Phase.String(),
		Success:   success,
		Metadata:  metadata,
	}
	if id != nil {
		event.UserID = id.ID
		event.Role = string(id.Role)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = code
	}

	c.audit.Emit(ctx, event)
}
