// Package idletimer implements the session-expiry state machine used to end
// idle authenticated sessions: ACTIVE -> WARNING after an idle threshold,
// WARNING -> EXPIRED when the countdown runs out, WARNING -> ACTIVE only
// through an explicit stay-logged-in confirmation.
package idletimer

import (
	"sync"
	"time"
)

type State int

const (
	StateActive State = iota
	StateWarning
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Config holds the monitor timings and callbacks. Callbacks are invoked from
// the monitor's timer goroutines without the internal lock held, so they may
// call back into the monitor.
type Config struct {
	// IdleTimeout is how long the session may sit without activity before
	// the warning fires.
	IdleTimeout time.Duration
	// Countdown is the warning window; expiry fires when it reaches zero.
	Countdown time.Duration

	OnWarning func(remaining time.Duration)
	OnExpire  func()
}

// Monitor owns every timer handle of the state machine. Cancellation is a
// single Stop call; no handle leaks past it.
type Monitor struct {
	mu  sync.Mutex
	cfg Config

	state   State
	stopped bool
	expired bool

	idleTimer      *time.Timer
	countdownTimer *time.Timer
	backupTimer    *time.Timer
	deadline       time.Time
}

// New starts a monitor in ACTIVE with the idle timer armed.
func New(cfg Config) *Monitor {
	m := &Monitor{cfg: cfg, state: StateActive}
	m.idleTimer = time.AfterFunc(cfg.IdleTimeout, m.enterWarning)
	return m
}

// State reports the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Remaining reports the time left on the warning countdown; zero outside
// WARNING.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateWarning {
		return 0
	}
	if r := time.Until(m.deadline); r > 0 {
		return r
	}
	return 0
}

// RecordActivity resets the idle timer. Activity is only meaningful in
// ACTIVE: while the warning dialog is up it must not silently extend the
// session, and an expired session stays expired.
func (m *Monitor) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.state != StateActive {
		return
	}
	m.idleTimer.Reset(m.cfg.IdleTimeout)
}

// ConfirmStayLoggedIn is the explicit dialog action. It is the only way back
// from WARNING to ACTIVE; it cancels the countdown and re-arms the idle timer.
func (m *Monitor) ConfirmStayLoggedIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.state != StateWarning {
		return
	}
	m.cancelCountdownLocked()
	m.state = StateActive
	m.idleTimer.Reset(m.cfg.IdleTimeout)
}

// ForceExpire ends the session immediately (the dialog's explicit logout).
func (m *Monitor) ForceExpire() {
	m.doExpire(false)
}

// Stop cancels every pending timer without expiring the session. No callback
// fires after Stop returns the monitor to rest. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	m.idleTimer.Stop()
	m.cancelCountdownLocked()
}

func (m *Monitor) enterWarning() {
	m.mu.Lock()
	if m.stopped || m.state != StateActive {
		m.mu.Unlock()
		return
	}
	m.state = StateWarning
	m.deadline = time.Now().Add(m.cfg.Countdown)
	m.countdownTimer = time.AfterFunc(m.cfg.Countdown, m.expire)
	// Backup guard in case the countdown handle is lost; the expired flag
	// keeps the two from both firing the callback.
	m.backupTimer = time.AfterFunc(m.cfg.Countdown+500*time.Millisecond, m.expire)
	onWarning := m.cfg.OnWarning
	remaining := m.cfg.Countdown
	m.mu.Unlock()

	if onWarning != nil {
		onWarning(remaining)
	}
}

// expire is the timer callback path. A countdown handle that has already
// fired can lose the race to ConfirmStayLoggedIn and only take the lock once
// the session is ACTIVE again; the state check makes such stale callbacks
// no-ops. Only ForceExpire may end a session outside WARNING.
func (m *Monitor) expire() {
	m.doExpire(true)
}

func (m *Monitor) doExpire(fromTimer bool) {
	m.mu.Lock()
	if m.stopped || m.expired || (fromTimer && m.state != StateWarning) {
		m.mu.Unlock()
		return
	}
	m.expired = true
	m.state = StateExpired
	m.idleTimer.Stop()
	m.cancelCountdownLocked()
	onExpire := m.cfg.OnExpire
	m.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

func (m *Monitor) cancelCountdownLocked() {
	if m.countdownTimer != nil {
		m.countdownTimer.Stop()
		m.countdownTimer = nil
	}
	if m.backupTimer != nil {
		m.backupTimer.Stop()
		m.backupTimer = nil
	}
}
