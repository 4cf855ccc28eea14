package authcore

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		err  bool
	}{
		{"customer", RoleCustomer, false},
		{"Technician", RoleTechnician, false},
		{"  WORKSHOP  ", RoleWorkshop, false},
		{"admin", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.raw)
		if tc.err {
			if !errors.Is(err, ErrRoleUnknown) {
				t.Fatalf("ParseRole(%q) err = %v, want ErrRoleUnknown", tc.raw, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q", tc.raw, got, err, tc.want)
		}
	}
}

func TestIdentityValidateRoleVariants(t *testing.T) {
	valid := func(role Role) *Identity { return testIdentity(role) }

	for _, role := range []Role{RoleCustomer, RoleTechnician, RoleWorkshop} {
		if err := valid(role).Validate(); err != nil {
			t.Fatalf("valid %s identity rejected: %v", role, err)
		}
	}

	customerWithPayload := valid(RoleCustomer)
	customerWithPayload.Technician = &TechnicianProfile{PartnershipNumber: "BP-1"}
	if err := customerWithPayload.Validate(); !errors.Is(err, ErrIdentityInvalid) {
		t.Fatalf("customer with technician payload = %v, want ErrIdentityInvalid", err)
	}

	technicianWithoutPayload := valid(RoleTechnician)
	technicianWithoutPayload.Technician = nil
	if err := technicianWithoutPayload.Validate(); !errors.Is(err, ErrIdentityInvalid) {
		t.Fatalf("technician without payload = %v, want ErrIdentityInvalid", err)
	}

	technicianNoPartnership := valid(RoleTechnician)
	technicianNoPartnership.Technician.PartnershipNumber = ""
	if err := technicianNoPartnership.Validate(); !errors.Is(err, ErrIdentityInvalid) {
		t.Fatalf("technician without partnership number = %v, want ErrIdentityInvalid", err)
	}

	workshopNoBusiness := valid(RoleWorkshop)
	workshopNoBusiness.Workshop.BusinessNumber = ""
	if err := workshopNoBusiness.Validate(); !errors.Is(err, ErrIdentityInvalid) {
		t.Fatalf("workshop without business number = %v, want ErrIdentityInvalid", err)
	}

	missingEmail := valid(RoleCustomer)
	missingEmail.Email = ""
	if err := missingEmail.Validate(); !errors.Is(err, ErrIdentityInvalid) {
		t.Fatalf("missing email = %v, want ErrIdentityInvalid", err)
	}

	unknownRole := valid(RoleCustomer)
	unknownRole.Role = "admin"
	if err := unknownRole.Validate(); !errors.Is(err, ErrRoleUnknown) {
		t.Fatalf("unknown role = %v, want ErrRoleUnknown", err)
	}

	var nilID *Identity
	if err := nilID.Validate(); !errors.Is(err, ErrIdentityInvalid) {
		t.Fatalf("nil identity = %v, want ErrIdentityInvalid", err)
	}
}

func TestIdentityCloneIsDeep(t *testing.T) {
	orig := testIdentity(RoleWorkshop)
	orig.Workshop.Services = []string{"oil", "brakes"}

	clone := orig.Clone()
	clone.Workshop.Services[0] = "mutated"
	clone.Workshop.WorkshopName = "mutated"

	if orig.Workshop.Services[0] != "oil" || orig.Workshop.WorkshopName != "Bengkel Maju" {
		t.Fatalf("clone shares workshop payload: %+v", orig.Workshop)
	}

	var nilID *Identity
	if nilID.Clone() != nil {
		t.Fatal("nil clone must stay nil")
	}
}

func TestCredentialsIdentifierPrecedence(t *testing.T) {
	c := Credentials{Email: "e@x.y", Username: "u", PartnershipNumber: "BP-1"}
	if got := c.Identifier(); got != "e@x.y" {
		t.Fatalf("Identifier = %q, want email first", got)
	}
	c.Email = ""
	if got := c.Identifier(); got != "u" {
		t.Fatalf("Identifier = %q, want username second", got)
	}
	c.Username = ""
	if got := c.Identifier(); got != "BP-1" {
		t.Fatalf("Identifier = %q, want partnership number last", got)
	}
	c.PartnershipNumber = ""
	if got := c.Identifier(); got != "" {
		t.Fatalf("Identifier = %q, want empty", got)
	}
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseLoading:         "loading",
		PhaseUnauthenticated: "unauthenticated",
		PhaseAuthenticated:   "authenticated",
		Phase(99):            "unknown",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Fatalf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
