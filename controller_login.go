package authcore

import (
	"context"
	"errors"
)

// Login authenticates creds against the service and, on success, persists
// the identity and commits the Authenticated state. Failures leave the
// current state untouched.
//
// Validation runs before the service is consulted: the role must parse, an
// identifier matching the role must be present, and the password must be
// non-empty. A partnership number only identifies technicians.
func (c *Controller) Login(ctx context.Context, creds Credentials) (*Identity, error) {
	if err := c.opGuard(); err != nil {
		return nil, err
	}

	if err := validateCredentials(creds); err != nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, nil, err, func() map[string]string {
			return map[string]string{"role": string(creds.Role)}
		})
		return nil, err
	}

	sctx, cancel := c.serviceCtx(ctx)
	id, err := c.service.Authenticate(sctx, creds)
	cancel()
	if err != nil {
		err = mapServiceError(err)
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, nil, err, func() map[string]string {
			return map[string]string{"role": string(creds.Role), "identifier": creds.Identifier()}
		})
		return nil, err
	}
	if id == nil {
		err = errors.Join(ErrServiceUnavailable, errors.New("service returned no identity"))
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, nil, err, nil)
		return nil, err
	}
	if verr := id.Validate(); verr != nil {
		err = errors.Join(ErrIdentityInvalid, verr)
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, nil, err, nil)
		return nil, err
	}

	id = id.Clone()

	c.mu.Lock()
	if serr := c.store.Save(ctx, id); serr != nil && !errors.Is(serr, ErrCorruptedSession) {
		// Persisted and in-memory state must not diverge; surface the write
		// failure instead of committing a session that will not survive a
		// restart.
		c.mu.Unlock()
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, id, serr, nil)
		return nil, serr
	}
	c.setStateLocked(State{Phase: PhaseAuthenticated, Identity: id})
	c.mu.Unlock()

	c.metricInc(MetricLoginSuccess)
	c.emitAudit(ctx, auditEventLoginSuccess, true, id, nil, nil)

	return id.Clone(), nil
}

// Logout clears the persisted session and transitions to Unauthenticated.
// The transition is unconditional: even if the store cannot be cleared the
// in-memory session ends, and the store error is reported to the caller.
func (c *Controller) Logout(ctx context.Context) error {
	if c.closed.Load() {
		return ErrControllerClosed
	}

	c.mu.Lock()
	clearErr := c.store.Clear(ctx)
	prev := c.state.Identity
	c.setStateLocked(State{Phase: PhaseUnauthenticated})
	c.mu.Unlock()

	c.metricInc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, clearErr == nil, prev, clearErr, nil)

	return clearErr
}

func validateCredentials(creds Credentials) error {
	role, err := ParseRole(string(creds.Role))
	if err != nil {
		return err
	}
	if creds.Identifier() == "" {
		return ErrIdentifierMissing
	}
	if creds.PartnershipNumber != "" && role != RoleTechnician {
		return errors.Join(ErrInvalidCredentials, errors.New("partnership number identifies technicians only"))
	}
	if creds.Password == "" {
		return ErrInvalidCredentials
	}
	return nil
}
