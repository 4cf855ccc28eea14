package authcore

import "context"

// VerifyEmail confirms an email verification token with the service. It
// never changes the session state; the deferred signup waiter observes the
// resulting verification through Service.AwaitVerification.
func (c *Controller) VerifyEmail(ctx context.Context, token string) error {
	if err := c.opGuard(); err != nil {
		return err
	}
	if token == "" {
		c.emitAudit(ctx, auditEventEmailConfirm, false, nil, ErrVerificationInvalid, nil)
		return ErrVerificationInvalid
	}

	sctx, cancel := c.serviceCtx(ctx)
	err := c.service.ConfirmEmail(sctx, token)
	cancel()
	err = mapServiceError(err)

	c.metricInc(MetricEmailConfirm)
	c.emitAudit(ctx, auditEventEmailConfirm, err == nil, c.State().Identity, err, nil)
	return err
}

// ForgotPassword asks the service to start a password reset for email. The
// service responds identically whether or not the address is registered, so
// the caller learns nothing about account existence.
func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	if err := c.opGuard(); err != nil {
		return err
	}
	if email == "" {
		c.emitAudit(ctx, auditEventPasswordResetRequest, false, nil, ErrResetInvalid, nil)
		return ErrResetInvalid
	}

	sctx, cancel := c.serviceCtx(ctx)
	err := c.service.RequestPasswordReset(sctx, email)
	cancel()
	err = mapServiceError(err)

	c.metricInc(MetricPasswordResetRequest)
	c.emitAudit(ctx, auditEventPasswordResetRequest, err == nil, nil, err, func() map[string]string {
		return map[string]string{"email": email}
	})
	return err
}

// ResetPassword completes a password reset with the token from the reset
// email. The new password must satisfy the same strength policy as signup.
// A successful reset does not sign the user in.
func (c *Controller) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := c.opGuard(); err != nil {
		return err
	}
	if token == "" {
		c.emitAudit(ctx, auditEventPasswordResetConfirm, false, nil, ErrResetInvalid, nil)
		return ErrResetInvalid
	}
	if err := validateNewPassword(newPassword); err != nil {
		c.emitAudit(ctx, auditEventPasswordResetConfirm, false, nil, err, nil)
		return err
	}

	sctx, cancel := c.serviceCtx(ctx)
	err := c.service.CompletePasswordReset(sctx, token, newPassword)
	cancel()
	err = mapServiceError(err)

	c.metricInc(MetricPasswordResetConfirm)
	c.emitAudit(ctx, auditEventPasswordResetConfirm, err == nil, nil, err, nil)
	return err
}
