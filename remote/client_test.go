package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bengkelink/authcore"
)

func testIdentityJSON() authcore.Identity {
	return authcore.Identity{
		ID:        "user-1",
		Role:      authcore.RoleCustomer,
		Name:      "Dina Rahmawati",
		Email:     "dina@example.com",
		Phone:     "+62-811-555-0199",
		Verified:  true,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithPollPause(5*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "example.com/no-scheme"} {
		if _, err := NewClient(raw); err == nil {
			t.Fatalf("NewClient(%q) accepted", raw)
		}
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	var got loginPayload
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+pathLogin, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode login payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(testIdentityJSON())
	})

	c := newTestClient(t, mux)
	id, err := c.Authenticate(context.Background(), authcore.Credentials{
		Role:     authcore.RoleCustomer,
		Email:    "dina@example.com",
		Password: "abcd12!",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if id.ID != "user-1" || !id.Verified {
		t.Fatalf("identity = %+v", id)
	}
	if got.Email != "dina@example.com" || got.Password != "abcd12!" || got.Role != authcore.RoleCustomer {
		t.Fatalf("payload = %+v", got)
	}
}

func TestAuthenticateStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, authcore.ErrInvalidCredentials},
		{http.StatusForbidden, authcore.ErrInvalidCredentials},
		{http.StatusRequestTimeout, authcore.ErrTimeout},
		{http.StatusInternalServerError, authcore.ErrServiceUnavailable},
		{http.StatusBadGateway, authcore.ErrServiceUnavailable},
	}
	for _, tc := range cases {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := c.Authenticate(context.Background(), authcore.Credentials{})
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestRegisterConflictMapsToAccountExists(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	_, err := c.Register(context.Background(), authcore.SignupRequest{})
	if !errors.Is(err, authcore.ErrAccountExists) {
		t.Fatalf("Register = %v, want ErrAccountExists", err)
	}
}

func TestRegisterReturnsPendingFlag(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+pathRegister, func(w http.ResponseWriter, r *http.Request) {
		id := testIdentityJSON()
		id.Role = authcore.RoleWorkshop
		id.Workshop = &authcore.WorkshopProfile{WorkshopName: "Bengkel Maju", BusinessNumber: "NIB-2291"}
		_ = json.NewEncoder(w).Encode(signupReply{Identity: &id, Pending: true})
	})

	c := newTestClient(t, mux)
	reg, err := c.Register(context.Background(), authcore.SignupRequest{Role: authcore.RoleWorkshop})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !reg.Pending || reg.Identity == nil {
		t.Fatalf("registration = %+v", reg)
	}
}

func TestAwaitVerificationLongPoll(t *testing.T) {
	var polls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+pathVerificationWait, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("user") != "user-1" {
			t.Errorf("user = %q", r.URL.Query().Get("user"))
		}
		if polls.Add(1) < 3 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = json.NewEncoder(w).Encode(testIdentityJSON())
	})

	c := newTestClient(t, mux)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := c.AwaitVerification(ctx, "user-1")
	if err != nil {
		t.Fatalf("AwaitVerification failed: %v", err)
	}
	if id.ID != "user-1" {
		t.Fatalf("identity = %+v", id)
	}
	if polls.Load() < 3 {
		t.Fatalf("only %d polls, want at least 3", polls.Load())
	}
}

func TestAwaitVerificationStopsOnContextCancel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.AwaitVerification(ctx, "user-1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("AwaitVerification = %v, want DeadlineExceeded", err)
	}
}

func TestConfirmEmailStatusMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	if err := c.ConfirmEmail(context.Background(), "tok"); !errors.Is(err, authcore.ErrVerificationInvalid) {
		t.Fatalf("ConfirmEmail = %v, want ErrVerificationInvalid", err)
	}
}

func TestCompletePasswordResetRemapsTokenError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	err := c.CompletePasswordReset(context.Background(), "tok", "efgh34!")
	if !errors.Is(err, authcore.ErrResetInvalid) {
		t.Fatalf("CompletePasswordReset = %v, want ErrResetInvalid", err)
	}
}

func TestRequestPasswordResetSendsEmail(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+pathForgotPassword, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, mux)
	if err := c.RequestPasswordReset(context.Background(), "dina@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if got["email"] != "dina@example.com" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestTransportFailureIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := c.Authenticate(context.Background(), authcore.Credentials{}); !errors.Is(err, authcore.ErrServiceUnavailable) {
		t.Fatalf("Authenticate = %v, want ErrServiceUnavailable", err)
	}
}
