package authcore

import (
	"context"
	"errors"

	"github.com/bengkelink/authcore/password"
)

// Signup registers a new account with the service.
//
// Local validation runs first and never reaches the service: terms must be
// accepted, password and confirmation must match, and the password must
// satisfy the strength policy. Those failures return [ErrTermsNotAccepted],
// [ErrPasswordMismatch] and [ErrWeakPassword] respectively.
//
// On success the outcome depends on the role. Workshop signups return
// [SignupPendingApproval] and create no session. Customer and technician
// signups return [SignupCompleted] and schedule a deferred verification
// waiter: when the service reports the account verified, the controller
// persists the identity and commits the Authenticated state. The waiter is
// bound to the controller lifetime and dies with [Controller.Close].
func (c *Controller) Signup(ctx context.Context, req SignupRequest) (SignupOutcome, error) {
	if err := c.opGuard(); err != nil {
		return 0, err
	}

	if err := validateSignupRequest(req); err != nil {
		c.metricInc(MetricSignupRejected)
		c.emitAudit(ctx, auditEventSignupFailure, false, nil, err, func() map[string]string {
			return map[string]string{"role": string(req.Role)}
		})
		return 0, err
	}

	sctx, cancel := c.serviceCtx(ctx)
	reg, err := c.service.Register(sctx, req)
	cancel()
	if err != nil {
		err = mapServiceError(err)
		c.metricInc(MetricSignupRejected)
		c.emitAudit(ctx, auditEventSignupFailure, false, nil, err, func() map[string]string {
			return map[string]string{"role": string(req.Role), "email": req.Email}
		})
		return 0, err
	}
	if reg == nil || reg.Identity == nil {
		err = errors.Join(ErrServiceUnavailable, errors.New("service returned no registration"))
		c.metricInc(MetricSignupRejected)
		c.emitAudit(ctx, auditEventSignupFailure, false, nil, err, nil)
		return 0, err
	}

	if reg.Pending {
		c.metricInc(MetricSignupPending)
		c.emitAudit(ctx, auditEventSignupPending, true, reg.Identity, nil, nil)
		return SignupPendingApproval, nil
	}

	c.spawnVerificationWaiter(reg.Identity.ID)

	c.metricInc(MetricSignupCompleted)
	c.emitAudit(ctx, auditEventSignupCompleted, true, reg.Identity, nil, nil)

	return SignupCompleted, nil
}

// spawnVerificationWaiter blocks on Service.AwaitVerification in a
// controller-lifetime goroutine. A resolved verification commits the
// Authenticated state unless a login or another signup got there first; a
// cancelled or failed wait is recorded as abandoned and changes nothing.
func (c *Controller) spawnVerificationWaiter(userID string) {
	wctx := c.lifeCtx
	var cancel context.CancelFunc
	if max := c.config.Verification.MaxWait; max > 0 {
		wctx, cancel = context.WithTimeout(c.lifeCtx, max)
	}

	c.waiters.Add(1)
	go func() {
		defer c.waiters.Done()
		if cancel != nil {
			defer cancel()
		}

		id, err := c.service.AwaitVerification(wctx, userID)
		if err != nil {
			c.metricInc(MetricVerificationAbandoned)
			c.emitAudit(wctx, auditEventVerificationDropped, false, nil, err, func() map[string]string {
				return map[string]string{"user_id": userID}
			})
			return
		}
		if id == nil || id.Validate() != nil {
			c.metricInc(MetricVerificationAbandoned)
			c.emitAudit(wctx, auditEventVerificationDropped, false, id, ErrIdentityInvalid, nil)
			return
		}
		id = id.Clone()
		id.Verified = true

		c.mu.Lock()
		if c.closed.Load() || c.state.Phase == PhaseAuthenticated {
			// A login or a competing signup already owns the session; the
			// late verification must not clobber it.
			c.mu.Unlock()
			c.metricInc(MetricVerificationAbandoned)
			c.emitAudit(wctx, auditEventVerificationDropped, false, id, nil, nil)
			return
		}
		if serr := c.store.Save(wctx, id); serr != nil && !errors.Is(serr, ErrCorruptedSession) {
			c.mu.Unlock()
			c.metricInc(MetricVerificationAbandoned)
			c.emitAudit(wctx, auditEventVerificationDropped, false, id, serr, nil)
			return
		}
		c.setStateLocked(State{Phase: PhaseAuthenticated, Identity: id})
		c.mu.Unlock()

		c.metricInc(MetricVerificationCompleted)
		c.emitAudit(wctx, auditEventVerificationDone, true, id, nil, nil)
	}()
}

func validateNewPassword(pw string) error {
	if err := password.DefaultPolicy().Validate(pw); err != nil {
		return errors.Join(ErrWeakPassword, err)
	}
	return nil
}

func validateSignupRequest(req SignupRequest) error {
	if _, err := ParseRole(string(req.Role)); err != nil {
		return err
	}
	if !req.TermsAccepted {
		return ErrTermsNotAccepted
	}
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := password.DefaultPolicy().Validate(req.Password); err != nil {
		return errors.Join(ErrWeakPassword, err)
	}
	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return ErrIdentityInvalid
	}
	return nil
}
