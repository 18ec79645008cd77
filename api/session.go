package api

import (
	"errors"

	"github.com/sarchlab/tapesim/core"
	"gopkg.in/tomb.v2"
)

var (
	// ErrStepLimit is returned by Wait when the session ran out of steps
	// before the machine halted.
	ErrStepLimit = errors.New("step limit reached")

	// ErrStopped is returned by Wait when the session was stopped before
	// the machine halted.
	ErrStopped = errors.New("session stopped")
)

// Session runs a Machine on its own goroutine. The machine belongs to the
// session until Wait returns.
type Session struct {
	t       tomb.Tomb
	machine *core.Machine
	limit   int
	err     error
}

// StartSession starts stepping m. A limit of zero or less means no limit.
func StartSession(m *core.Machine, limit int) *Session {
	s := &Session{
		machine: m,
		limit:   limit,
	}

	s.t.Go(func() error {
		s.err = s.run()
		return s.err
	})

	return s
}

func (s *Session) run() error {
	for steps := 0; !s.machine.Done(); steps++ {
		select {
		case <-s.t.Dying():
			return ErrStopped
		default:
		}

		if s.limit > 0 && steps >= s.limit {
			return ErrStepLimit
		}

		if err := s.machine.Step(); err != nil {
			return err
		}
	}

	return s.machine.Err()
}

// Stop asks the session to stop before its next step. It does not wait.
// Stopping a finished session leaves its outcome unchanged.
func (s *Session) Stop() {
	s.t.Kill(nil)
}

// Wait blocks until the session finishes and returns nil if the machine
// halted, the machine's fatal error, ErrStepLimit, or ErrStopped.
func (s *Session) Wait() error {
	_ = s.t.Wait()
	return s.err
}

// Machine returns the machine. Only inspect it after Wait returns.
func (s *Session) Machine() *core.Machine {
	return s.machine
}
