package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bengkelink/authcore"
	"github.com/bengkelink/authcore/password"
)

// Mailer delivers out-of-band tokens to the account's email address. The
// directory never returns tokens to the API caller; in production a real
// mailer sends them, and tests plug in a capturing fake.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type discardMailer struct{}

func (discardMailer) SendVerification(context.Context, string, string) error  { return nil }
func (discardMailer) SendPasswordReset(context.Context, string, string) error { return nil }

// Config configures the embedded directory.
type Config struct {
	// TokenSecret signs verification and reset tokens. Required, at least
	// 32 bytes.
	TokenSecret []byte
	// VerificationTTL bounds email verification tokens. Default 24h.
	VerificationTTL time.Duration
	// ResetTTL bounds password reset tokens. Default 1h.
	ResetTTL time.Duration
	// Hash holds argon2id parameters. Zero value means
	// password.DefaultConfig.
	Hash password.Config
	// AutoVerifyAfter, when positive, marks customer and technician
	// accounts verified that long after registration without requiring a
	// token. Meant for demos and tests; leave zero in production.
	AutoVerifyAfter time.Duration
}

type account struct {
	identity     authcore.Identity
	passwordHash string
	// verifyCh is closed exactly once, when the account becomes verified.
	verifyCh chan struct{}
}

// Service is the embedded directory. It implements authcore.Service and is
// safe for concurrent use.
type Service struct {
	cfg    Config
	hasher *password.Argon2
	tokens *tokenManager
	mailer Mailer
	clock  func() time.Time

	mu            sync.RWMutex
	accounts      map[string]*account
	byEmail       map[string]string
	byUsername    map[string]string
	byPartnership map[string]string
}

var _ authcore.Service = (*Service)(nil)

// New validates cfg and returns an empty directory. A nil mailer discards
// tokens.
func New(cfg Config, mailer Mailer) (*Service, error) {
	if len(cfg.TokenSecret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if cfg.VerificationTTL == 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.Hash == (password.Config{}) {
		cfg.Hash = password.DefaultConfig()
	}
	if mailer == nil {
		mailer = discardMailer{}
	}

	hasher, err := password.NewArgon2(cfg.Hash)
	if err != nil {
		return nil, err
	}

	clock := time.Now
	return &Service{
		cfg:           cfg,
		hasher:        hasher,
		tokens:        newTokenManager(cfg.TokenSecret, clock),
		mailer:        mailer,
		clock:         clock,
		accounts:      make(map[string]*account),
		byEmail:       make(map[string]string),
		byUsername:    make(map[string]string),
		byPartnership: make(map[string]string),
	}, nil
}

// Authenticate resolves the credential identifier within the given role and
// verifies the password. Unknown identifiers, wrong roles, wrong passwords,
// and unapproved workshop accounts all collapse into
// authcore.ErrInvalidCredentials so callers cannot probe account state.
func (s *Service) Authenticate(ctx context.Context, creds authcore.Credentials) (*authcore.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	acct := s.resolveLocked(creds)
	var hash string
	var id *authcore.Identity
	if acct != nil {
		hash = acct.passwordHash
		id = acct.identity.Clone()
	}
	s.mu.RUnlock()

	if acct == nil || id.Role != creds.Role {
		return nil, authcore.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(creds.Password, hash)
	if err != nil || !ok {
		return nil, authcore.ErrInvalidCredentials
	}
	if id.Role == authcore.RoleWorkshop && !id.Workshop.Approved {
		return nil, authcore.ErrInvalidCredentials
	}

	s.maybeRehash(creds.Password, hash, id.ID)

	return id, nil
}

// Register creates an account. Workshop registrations come back pending and
// unapproved; customer and technician registrations trigger a verification
// mail and, with AutoVerifyAfter set, a self-verification timer.
func (s *Service) Register(ctx context.Context, req authcore.SignupRequest) (*authcore.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := identityFromRequest(req, s.clock())
	if err := id.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	acct := &account{identity: *id, passwordHash: hash, verifyCh: make(chan struct{})}

	s.mu.Lock()
	if s.takenLocked(id) {
		s.mu.Unlock()
		return nil, authcore.ErrAccountExists
	}
	s.accounts[id.ID] = acct
	s.indexLocked(id)
	s.mu.Unlock()

	pending := id.Role == authcore.RoleWorkshop
	if !pending {
		token, terr := s.tokens.mint(id.ID, purposeEmailVerify, s.cfg.VerificationTTL)
		if terr != nil {
			return nil, terr
		}
		if merr := s.mailer.SendVerification(ctx, id.Email, token); merr != nil {
			return nil, merr
		}
		if s.cfg.AutoVerifyAfter > 0 {
			userID := id.ID
			time.AfterFunc(s.cfg.AutoVerifyAfter, func() { s.markVerified(userID) })
		}
	}

	return &authcore.Registration{Identity: id.Clone(), Pending: pending}, nil
}

// AwaitVerification blocks until the account becomes verified or ctx is
// done. An already-verified account returns immediately.
func (s *Service) AwaitVerification(ctx context.Context, userID string) (*authcore.Identity, error) {
	s.mu.RLock()
	acct, ok := s.accounts[userID]
	var ch chan struct{}
	if ok {
		ch = acct.verifyCh
	}
	s.mu.RUnlock()

	if !ok {
		return nil, authcore.ErrVerificationInvalid
	}

	select {
	case <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.RLock()
	id := acct.identity.Clone()
	s.mu.RUnlock()
	return id, nil
}

// ConfirmEmail validates a verification token and marks the bound account
// verified. Confirming an already-verified account is a no-op.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID, err := s.tokens.check(token, purposeEmailVerify)
	if err != nil {
		return authcore.ErrVerificationInvalid
	}
	if !s.markVerified(userID) {
		return authcore.ErrVerificationInvalid
	}
	return nil
}

// RequestPasswordReset mints a reset token and mails it. An unregistered
// address gets the same nil response as a registered one.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	userID, ok := s.byEmail[normalize(email)]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	token, err := s.tokens.mint(userID, purposePasswordReset, s.cfg.ResetTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, email, token)
}

// CompletePasswordReset validates a reset token and replaces the account's
// password hash.
func (s *Service) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID, err := s.tokens.check(token, purposePasswordReset)
	if err != nil {
		return authcore.ErrResetInvalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	acct, ok := s.accounts[userID]
	if ok {
		acct.passwordHash = hash
	}
	s.mu.Unlock()

	if !ok {
		return authcore.ErrResetInvalid
	}
	return nil
}

// ApproveWorkshop marks a pending workshop account approved and verified,
// allowing it to authenticate. This is the platform operator's action, not
// part of the authcore.Service surface.
func (s *Service) ApproveWorkshop(userID string) error {
	s.mu.Lock()
	acct, ok := s.accounts[userID]
	if !ok || acct.identity.Role != authcore.RoleWorkshop {
		s.mu.Unlock()
		return errors.New("no pending workshop with that id")
	}
	acct.identity.Workshop.Approved = true
	s.mu.Unlock()

	s.markVerified(userID)
	return nil
}

// markVerified flips the account to verified and releases waiters. Reports
// whether the account exists.
func (s *Service) markVerified(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return false
	}
	if !acct.identity.Verified {
		acct.identity.Verified = true
		close(acct.verifyCh)
	}
	return true
}

// maybeRehash upgrades a stored hash produced with weaker parameters. Best
// effort; login already succeeded.
func (s *Service) maybeRehash(pw, hash, userID string) {
	upgrade, err := s.hasher.NeedsUpgrade(hash)
	if err != nil || !upgrade {
		return
	}
	newHash, err := s.hasher.Hash(pw)
	if err != nil {
		return
	}
	s.mu.Lock()
	if acct, ok := s.accounts[userID]; ok && acct.passwordHash == hash {
		acct.passwordHash = newHash
	}
	s.mu.Unlock()
}

// resolveLocked maps a credential identifier to an account. Caller holds at
// least the read lock.
func (s *Service) resolveLocked(creds authcore.Credentials) *account {
	var userID string
	var ok bool
	switch {
	case creds.Email != "":
		userID, ok = s.byEmail[normalize(creds.Email)]
	case creds.Username != "":
		userID, ok = s.byUsername[normalize(creds.Username)]
	case creds.PartnershipNumber != "":
		userID, ok = s.byPartnership[creds.PartnershipNumber]
	}
	if !ok {
		return nil
	}
	return s.accounts[userID]
}

func (s *Service) takenLocked(id *authcore.Identity) bool {
	if _, ok := s.byEmail[normalize(id.Email)]; ok {
		return true
	}
	if id.Username != "" {
		if _, ok := s.byUsername[normalize(id.Username)]; ok {
			return true
		}
	}
	if id.Technician != nil {
		if _, ok := s.byPartnership[id.Technician.PartnershipNumber]; ok {
			return true
		}
	}
	return false
}

func (s *Service) indexLocked(id *authcore.Identity) {
	s.byEmail[normalize(id.Email)] = id.ID
	if id.Username != "" {
		s.byUsername[normalize(id.Username)] = id.ID
	}
	if id.Technician != nil {
		s.byPartnership[id.Technician.PartnershipNumber] = id.ID
	}
}

func identityFromRequest(req authcore.SignupRequest, now time.Time) *authcore.Identity {
	id := &authcore.Identity{
		ID:           uuid.NewString(),
		Role:         req.Role,
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		ProfilePhoto: req.ProfilePhoto,
		CreatedAt:    now,
	}
	if req.Technician != nil {
		tp := *req.Technician
		id.Technician = &tp
	}
	if req.Workshop != nil {
		wp := *req.Workshop
		wp.Approved = false
		id.Workshop = &wp
	}
	return id
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
