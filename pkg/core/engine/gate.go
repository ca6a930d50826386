package engine

import (
	"errors"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
)

// ErrPaused is returned by a PauseGate while trading is halted.
var ErrPaused = errors.New("trading is paused")

// AccessGate decides whether a caller may run a mutating engine operation.
// It is injected at construction so the matching core carries no ambient
// access-control state. Read-only queries bypass the gate.
type AccessGate interface {
	Permit(caller common.Address) error
}

// AllowAll permits every caller.
type AllowAll struct{}

func (AllowAll) Permit(common.Address) error { return nil }

// PauseGate permits callers unless trading has been halted.
type PauseGate struct {
	paused atomic.Bool
}

func (g *PauseGate) Pause()  { g.paused.Store(true) }
func (g *PauseGate) Resume() { g.paused.Store(false) }

func (g *PauseGate) Permit(common.Address) error {
	if g.paused.Load() {
		return ErrPaused
	}
	return nil
}
