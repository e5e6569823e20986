package antibot

import (
	"context"
	"errors"

	"go-jobscout/internal/browser"
)

// State of one worker's anti-bot machine.
type State int

const (
	StateNormal State = iota
	StateSuspected
	StateVerifying
	StateRecovered
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateSuspected:
		return "suspected"
	case StateVerifying:
		return "verifying"
	case StateRecovered:
		return "recovered"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// ErrAbandoned means recovery was attempted the maximum number of times
// and the worker should report itself permanently failed.
var ErrAbandoned = errors.New("antibot: worker abandoned after exhausted recovery attempts")

// RecoveryFunc performs one external recovery action (manual solving in
// a visible session, waiting out a timed block) and returns the fresh
// cookies to install. Pluggable so tests and automated solvers can
// stand in for a human.
type RecoveryFunc func(ctx context.Context, challengeURL string) ([]browser.Cookie, error)

// Machine drives Normal → Suspected → Verifying → Recovered|Abandoned
// for a single worker. Not safe for concurrent use; each worker owns
// exactly one machine.
type Machine struct {
	state       State
	maxAttempts int
	recover     RecoveryFunc

	// onTransition reports every state change; no transition is silent.
	onTransition func(from, to State)
}

func NewMachine(maxAttempts int, recover RecoveryFunc, onTransition func(from, to State)) *Machine {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Machine{
		state:        StateNormal,
		maxAttempts:  maxAttempts,
		recover:      recover,
		onTransition: onTransition,
	}
}

func (m *Machine) State() State {
	return m.state
}

// Suspended reports whether the worker should stop pulling work items.
func (m *Machine) Suspended() bool {
	return m.state == StateSuspected || m.state == StateVerifying || m.state == StateAbandoned
}

func (m *Machine) transition(to State) {
	from := m.state
	m.state = to
	if m.onTransition != nil {
		m.onTransition(from, to)
	}
}

// HandleSuspicion runs the full recovery protocol after Detect fired on
// the worker's page. On success the fresh cookies are installed into
// the session and the machine returns to Normal. After maxAttempts
// failures the machine parks in Abandoned and returns ErrAbandoned.
func (m *Machine) HandleSuspicion(ctx context.Context, sess browser.Session, challengeURL string) error {
	m.transition(StateSuspected)
	m.transition(StateVerifying)

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		// shutdown is not abandonment: leave the machine where it is so
		// the run's abandoned count only reflects failed verification
		if err := ctx.Err(); err != nil {
			return err
		}

		cookies, err := m.recover(ctx, challengeURL)
		if err != nil {
			continue
		}

		if len(cookies) > 0 {
			if err := sess.InstallCookies(cookies); err != nil {
				continue
			}
		}
		m.transition(StateRecovered)
		m.transition(StateNormal)
		return nil
	}

	m.transition(StateAbandoned)
	return ErrAbandoned
}
