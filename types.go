package authcore

import (
	"context"
	"strings"
	"time"
)

// Role identifies which side of the marketplace an identity belongs to.
type Role string

const (
	// RoleCustomer is a vehicle owner requesting service.
	RoleCustomer Role = "customer"
	// RoleTechnician is a field technician attached to a partner workshop.
	RoleTechnician Role = "technician"
	// RoleWorkshop is a partner workshop account. Workshop signups require
	// manual approval before they can authenticate.
	RoleWorkshop Role = "workshop"
)

// ParseRole validates a raw role string against the three marketplace roles.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleTechnician:
		return RoleTechnician, nil
	case RoleWorkshop:
		return RoleWorkshop, nil
	default:
		return "", ErrRoleUnknown
	}
}

// TechnicianProfile carries the fields that exist only on technician
// identities. It is attached to [Identity.Technician] and must be nil for
// any other role.
type TechnicianProfile struct {
	WorkshopName      string    `json:"workshopName"`
	PartnershipNumber string    `json:"partnershipNumber"`
	IDNumber          string    `json:"idNumber,omitempty"`
	DateOfBirth       time.Time `json:"dateOfBirth,omitzero"`
	Rating            float64   `json:"rating"`
	CompletedServices int       `json:"completedServices"`
	Active            bool      `json:"active"`
}

// WorkshopProfile carries the fields that exist only on workshop identities.
// It is attached to [Identity.Workshop] and must be nil for any other role.
type WorkshopProfile struct {
	WorkshopName    string   `json:"workshopName"`
	Province        string   `json:"province,omitempty"`
	City            string   `json:"city,omitempty"`
	PostalCode      string   `json:"postalCode,omitempty"`
	DetailAddress   string   `json:"detailAddress,omitempty"`
	OperatingHours  string   `json:"operatingHours,omitempty"`
	Services        []string `json:"services,omitempty"`
	VehicleTypes    []string `json:"vehicleTypes,omitempty"`
	TechnicianCount int      `json:"technicianCount,omitempty"`
	OwnerName       string   `json:"ownerName,omitempty"`
	BusinessNumber  string   `json:"businessNumber"`
	TaxNumber       string   `json:"taxNumber,omitempty"`
	BankName        string   `json:"bankName,omitempty"`
	AccountNumber   string   `json:"accountNumber,omitempty"`
	AccountName     string   `json:"accountName,omitempty"`
	Approved        bool     `json:"approved"`
	Rating          float64  `json:"rating"`
}

// Identity is the authenticated principal. Role is immutable after creation;
// the role-variant payloads (Technician, Workshop) are present exactly when
// the role matches, enforced by [Identity.Validate].
type Identity struct {
	ID           string             `json:"id"`
	Role         Role               `json:"role"`
	Name         string             `json:"name"`
	Username     string             `json:"username,omitempty"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	ProfilePhoto string             `json:"profilePhoto,omitempty"`
	Address      string             `json:"address,omitempty"`
	Verified     bool               `json:"isVerified"`
	CreatedAt    time.Time          `json:"createdAt"`
	Technician   *TechnicianProfile `json:"technician,omitempty"`
	Workshop     *WorkshopProfile   `json:"workshop,omitempty"`
}

// Validate reports whether the identity satisfies the structural invariants:
// required base fields present, a known role, and the role-variant payload
// attached only under its matching role.
func (id *Identity) Validate() error {
	if id == nil {
		return ErrIdentityInvalid
	}
	if id.ID == "" || id.Name == "" || id.Email == "" || id.Phone == "" {
		return ErrIdentityInvalid
	}
	if id.CreatedAt.IsZero() {
		return ErrIdentityInvalid
	}
	switch id.Role {
	case RoleCustomer:
		if id.Technician != nil || id.Workshop != nil {
			return ErrIdentityInvalid
		}
	case RoleTechnician:
		if id.Technician == nil || id.Workshop != nil {
			return ErrIdentityInvalid
		}
		if id.Technician.PartnershipNumber == "" {
			return ErrIdentityInvalid
		}
	case RoleWorkshop:
		if id.Workshop == nil || id.Technician != nil {
			return ErrIdentityInvalid
		}
		if id.Workshop.BusinessNumber == "" {
			return ErrIdentityInvalid
		}
	default:
		return ErrRoleUnknown
	}
	return nil
}

// Clone returns a deep copy. Controller state snapshots hand out clones so
// callers can never mutate the controller's copy.
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	out := *id
	if id.Technician != nil {
		tp := *id.Technician
		out.Technician = &tp
	}
	if id.Workshop != nil {
		wp := *id.Workshop
		if wp.Services != nil {
			wp.Services = append([]string(nil), wp.Services...)
		}
		if wp.VehicleTypes != nil {
			wp.VehicleTypes = append([]string(nil), wp.VehicleTypes...)
		}
		out.Workshop = &wp
	}
	return &out
}

// Credentials is the transient login input. It carries the role, the
// password, and whichever identifier the role logs in with: email
// (customer), email or username (any role), or partnership number
// (technician only). It is never persisted.
type Credentials struct {
	Role              Role
	Email             string
	Username          string
	PartnershipNumber string
	Password          string
}

// Identifier returns the first identifier set on the credentials, in the
// precedence order email, username, partnership number.
func (c Credentials) Identifier() string {
	switch {
	case c.Email != "":
		return c.Email
	case c.Username != "":
		return c.Username
	default:
		return c.PartnershipNumber
	}
}

// SignupRequest is the transient signup input. Password and ConfirmPassword
// must match and satisfy the strength policy before any collaborator call is
// made. Role-specific payloads mirror the Identity variants.
type SignupRequest struct {
	Role            Role
	Name            string
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	TermsAccepted   bool
	ProfilePhoto    string

	Technician *TechnicianProfile
	Workshop   *WorkshopProfile
}

// SignupOutcome distinguishes the two successful signup results.
type SignupOutcome int

const (
	// SignupCompleted means the account was created and a deferred
	// verification waiter has been scheduled; the session becomes
	// authenticated once verification resolves.
	SignupCompleted SignupOutcome = iota
	// SignupPendingApproval means a workshop account was created and awaits
	// manual approval by the platform. No session is created.
	SignupPendingApproval
)

// Phase is the controller's authentication phase.
type Phase uint8

const (
	// PhaseLoading is the initial phase, before the startup transition has
	// consulted the session store.
	PhaseLoading Phase = iota
	// PhaseUnauthenticated means no identity is signed in.
	PhaseUnauthenticated
	// PhaseAuthenticated means a non-nil Identity is signed in.
	PhaseAuthenticated
)

// String implements fmt.Stringer for log and audit output.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller's session state. Identity is non-nil
// exactly when Phase is [PhaseAuthenticated].
type State struct {
	Phase    Phase
	Identity *Identity
}

// Registration is the result of [Service.Register]. Pending is true for
// workshop accounts awaiting approval, in which case Identity describes the
// created-but-not-yet-usable account.
type Registration struct {
	Identity *Identity
	Pending  bool
}

// Service is the Auth Service collaborator: the external system that
// performs real credential verification and account lifecycle operations.
// Implementations must be safe for concurrent use. Every method honors ctx
// cancellation; AwaitVerification in particular may block for an unbounded
// period and must unblock promptly when ctx is done.
type Service interface {
	Authenticate(ctx context.Context, creds Credentials) (*Identity, error)
	Register(ctx context.Context, req SignupRequest) (*Registration, error)
	AwaitVerification(ctx context.Context, userID string) (*Identity, error)
	ConfirmEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
}
