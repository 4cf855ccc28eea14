package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoginSuccessPersistsAndCommits(t *testing.T) {
	store := &memStore{}
	want := testIdentity(RoleTechnician)
	svc := &fakeService{
		authenticateFn: func(ctx context.Context, creds Credentials) (*Identity, error) {
			if creds.PartnershipNumber != "BP-1042" {
				t.Fatalf("credentials not passed through: %+v", creds)
			}
			return want.Clone(), nil
		},
	}
	c := buildTestController(t, store, svc)
	initController(t, c)

	got, err := c.Login(context.Background(), Credentials{
		Role:              RoleTechnician,
		PartnershipNumber: "BP-1042",
		Password:          "abcd12!",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.ID != want.ID {
		t.Fatalf("returned identity %q, want %q", got.ID, want.ID)
	}

	s := c.State()
	if s.Phase != PhaseAuthenticated || s.Identity.ID != want.ID {
		t.Fatalf("state after login = %+v", s)
	}
	if saved := store.saved(); saved == nil || saved.ID != want.ID {
		t.Fatalf("session not persisted: %+v", saved)
	}
	if c.MetricsSnapshot().Counters[MetricLoginSuccess] != 1 {
		t.Fatal("login success counter not incremented")
	}
}

func TestLoginValidationRunsBeforeService(t *testing.T) {
	called := false
	svc := &fakeService{
		authenticateFn: func(context.Context, Credentials) (*Identity, error) {
			called = true
			return nil, nil
		},
	}
	c := buildTestController(t, &memStore{}, svc)
	initController(t, c)

	cases := []struct {
		name  string
		creds Credentials
		want  error
	}{
		{"unknown role", Credentials{Role: "admin", Email: "a@b.c", Password: "x"}, ErrRoleUnknown},
		{"no identifier", Credentials{Role: RoleCustomer, Password: "x"}, ErrIdentifierMissing},
		{"partnership number on customer", Credentials{Role: RoleCustomer, PartnershipNumber: "BP-1", Password: "x"}, ErrInvalidCredentials},
		{"empty password", Credentials{Role: RoleCustomer, Email: "a@b.c"}, ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Login(context.Background(), tc.creds); !errors.Is(err, tc.want) {
				t.Fatalf("Login = %v, want %v", err, tc.want)
			}
		})
	}
	if called {
		t.Fatal("service consulted despite local validation failure")
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	svc := &fakeService{
		authenticateFn: func(context.Context, Credentials) (*Identity, error) {
			return nil, ErrInvalidCredentials
		},
	}
	c := buildTestController(t, &memStore{}, svc)
	initController(t, c)

	_, err := c.Login(context.Background(), Credentials{Role: RoleCustomer, Email: "a@b.c", Password: "nope"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login = %v, want ErrInvalidCredentials", err)
	}
	if got := c.State().Phase; got != PhaseUnauthenticated {
		t.Fatalf("failed login moved state to %s", got)
	}
	if c.MetricsSnapshot().Counters[MetricLoginFailure] != 1 {
		t.Fatal("login failure counter not incremented")
	}
}

func TestLoginTimeoutMapsToErrTimeout(t *testing.T) {
	store := &memStore{}
	svc := &fakeService{
		authenticateFn: func(ctx context.Context, _ Credentials) (*Identity, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	cfg := DefaultConfig()
	cfg.Service.Timeout = 20 * time.Millisecond
	cfg.Audit.Enabled = false
	c, err := New().WithConfig(cfg).WithStore(store).WithService(svc).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	initController(t, c)

	_, err = c.Login(context.Background(), Credentials{Role: RoleCustomer, Email: "a@b.c", Password: "x"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Login = %v, want ErrTimeout", err)
	}
}

func TestLoginUnknownServiceErrorWrapsUnavailable(t *testing.T) {
	svc := &fakeService{
		authenticateFn: func(context.Context, Credentials) (*Identity, error) {
			return nil, errors.New("connection refused")
		},
	}
	c := buildTestController(t, &memStore{}, svc)
	initController(t, c)

	_, err := c.Login(context.Background(), Credentials{Role: RoleCustomer, Email: "a@b.c", Password: "x"})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("Login = %v, want ErrServiceUnavailable", err)
	}
}

func TestLoginRejectsInvalidServiceIdentity(t *testing.T) {
	svc := &fakeService{
		authenticateFn: func(context.Context, Credentials) (*Identity, error) {
			// Customer identity illegally carrying a workshop payload.
			id := testIdentity(RoleCustomer)
			id.Workshop = &WorkshopProfile{WorkshopName: "x", BusinessNumber: "y"}
			return id, nil
		},
	}
	c := buildTestController(t, &memStore{}, svc)
	initController(t, c)

	_, err := c.Login(context.Background(), Credentials{Role: RoleCustomer, Email: "a@b.c", Password: "x"})
	if !errors.Is(err, ErrIdentityInvalid) {
		t.Fatalf("Login = %v, want ErrIdentityInvalid", err)
	}
	if got := c.State().Phase; got != PhaseUnauthenticated {
		t.Fatalf("invalid identity committed, phase %s", got)
	}
}

func TestLoginStoreWriteFailureDoesNotCommit(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	svc := &fakeService{
		authenticateFn: func(context.Context, Credentials) (*Identity, error) {
			return testIdentity(RoleCustomer), nil
		},
	}
	c := buildTestController(t, store, svc)
	initController(t, c)

	if _, err := c.Login(context.Background(), Credentials{Role: RoleCustomer, Email: "a@b.c", Password: "x"}); err == nil {
		t.Fatal("expected store write failure to surface")
	}
	if got := c.State().Phase; got != PhaseUnauthenticated {
		t.Fatalf("state committed despite write failure, phase %s", got)
	}
}

func TestLogoutClearsStoreAndState(t *testing.T) {
	store := &memStore{id: testIdentity(RoleCustomer)}
	c := buildTestController(t, store, &fakeService{})
	initController(t, c)

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if got := c.State().Phase; got != PhaseUnauthenticated {
		t.Fatalf("phase after logout = %s", got)
	}
	if store.saved() != nil {
		t.Fatal("store still holds a session after logout")
	}
	if store.clears != 1 {
		t.Fatalf("store.Clear called %d times, want 1", store.clears)
	}
}

func TestLogoutTransitionsEvenWhenClearFails(t *testing.T) {
	store := &memStore{id: testIdentity(RoleCustomer), clearErr: errors.New("backend down")}
	c := buildTestController(t, store, &fakeService{})
	initController(t, c)

	if err := c.Logout(context.Background()); err == nil {
		t.Fatal("expected clear failure to surface")
	}
	if got := c.State().Phase; got != PhaseUnauthenticated {
		t.Fatalf("logout did not transition, phase %s", got)
	}
}

func TestLogoutWhileUnauthenticatedIsNoOp(t *testing.T) {
	c := buildTestController(t, &memStore{}, &fakeService{})
	initController(t, c)

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if got := c.State().Phase; got != PhaseUnauthenticated {
		t.Fatalf("phase = %s", got)
	}
}

func TestSessionLifecycleFullCycle(t *testing.T) {
	store := &memStore{}
	want := testIdentity(RoleCustomer)
	svc := &fakeService{
		authenticateFn: func(ctx context.Context, creds Credentials) (*Identity, error) {
			return want.Clone(), nil
		},
	}
	c := buildTestController(t, store, svc)

	initController(t, c)
	if got := c.State().Phase; got != PhaseUnauthenticated {
		t.Fatalf("phase after init on empty store = %s, want unauthenticated", got)
	}

	if _, err := c.Login(context.Background(), Credentials{
		Role:     RoleCustomer,
		Email:    "dina@example.com",
		Password: "abcd12!",
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	s := c.State()
	if s.Phase != PhaseAuthenticated || s.Identity == nil || s.Identity.ID != want.ID {
		t.Fatalf("state after login = %+v", s)
	}
	if saved := store.saved(); saved == nil || saved.ID != want.ID {
		t.Fatalf("persisted record = %+v, want %q", saved, want.ID)
	}

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	s = c.State()
	if s.Phase != PhaseUnauthenticated || s.Identity != nil {
		t.Fatalf("state after logout = %+v", s)
	}
	if saved := store.saved(); saved != nil {
		t.Fatalf("store still holds %+v after logout", saved)
	}
}
