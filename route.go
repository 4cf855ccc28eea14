package authcore

import (
	"sync"
	"time"
)

// ViewID names the top-level surfaces of the application shell.
type ViewID string

const (
	// ViewSplash is the branded first-run screen shown until the splash
	// window elapses, regardless of session state.
	ViewSplash ViewID = "splash"
	// ViewSpinner is the minimal wait surface while startup is unresolved.
	ViewSpinner ViewID = "spinner"
	// ViewAuthEntry hosts login, signup, and password recovery.
	ViewAuthEntry ViewID = "auth_entry"
	// ViewCustomerHome is the customer dashboard.
	ViewCustomerHome ViewID = "customer_home"
	// ViewTechnicianHome is the technician dashboard.
	ViewTechnicianHome ViewID = "technician_home"
	// ViewWorkshopHome is the workshop dashboard.
	ViewWorkshopHome ViewID = "workshop_home"
)

// Route maps a session state to the view the shell must show. It is a pure
// function of its inputs.
//
// Priority order: until the splash window elapses the splash wins over
// everything. After that, unresolved startup shows the spinner, no session
// shows the auth entry, and an authenticated session routes to the
// dashboard for its role. An authenticated state carrying a nil or
// unknown-role identity falls back to the auth entry rather than guessing
// a dashboard.
func Route(splashElapsed bool, s State) ViewID {
	if !splashElapsed {
		return ViewSplash
	}
	switch s.Phase {
	case PhaseLoading:
		return ViewSpinner
	case PhaseAuthenticated:
		if s.Identity == nil {
			return ViewAuthEntry
		}
		switch s.Identity.Role {
		case RoleCustomer:
			return ViewCustomerHome
		case RoleTechnician:
			return ViewTechnicianHome
		case RoleWorkshop:
			return ViewWorkshopHome
		default:
			return ViewAuthEntry
		}
	default:
		return ViewAuthEntry
	}
}

// SplashGate is a one-shot timer answering "has the splash window
// elapsed". The window starts on the first Elapsed call and, once open,
// stays open for the life of the gate. Safe for concurrent use.
type SplashGate struct {
	duration time.Duration

	mu      sync.Mutex
	started time.Time
	now     func() time.Time
}

// NewSplashGate returns a gate with the given window. A zero or negative
// duration yields a gate that is open immediately.
func NewSplashGate(d time.Duration) *SplashGate {
	return &SplashGate{duration: d, now: time.Now}
}

// Elapsed reports whether the splash window has passed. The first call
// starts the clock.
func (g *SplashGate) Elapsed() bool {
	if g == nil || g.duration <= 0 {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started.IsZero() {
		g.started = g.now()
		return false
	}
	return g.now().Sub(g.started) >= g.duration
}
