package pipeline

import (
	"github.com/swiftusd/doctool/internal/foundation/errors"
)

// State is a point in the documentation build.
type State string

const (
	StateIdle             State = "idle"
	StateExtractingNative State = "extracting-native"
	StateExtractingHost   State = "extracting-host"
	StateSavingRaw        State = "saving-raw"
	StateCleaning         State = "cleaning"
	StateAssembling       State = "assembling"
	StateDone             State = "done"
)

var transitions = map[State][]State{
	StateIdle:             {StateExtractingNative, StateCleaning},
	StateExtractingNative: {StateExtractingHost},
	StateExtractingHost:   {StateSavingRaw},
	StateSavingRaw:        {StateCleaning},
	StateCleaning:         {StateAssembling},
	StateAssembling:       {StateDone},
}

// Machine tracks the build state. The zero value is idle.
type Machine struct {
	state   State
	history []State
}

// State returns the current state.
func (m *Machine) State() State {
	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// History returns every state entered, in order, starting with idle.
func (m *Machine) History() []State {
	return append([]State{StateIdle}, m.history...)
}

// Transition moves to next or fails with an internal error if the move is not allowed.
func (m *Machine) Transition(next State) error {
	from := m.State()
	for _, allowed := range transitions[from] {
		if allowed == next {
			m.state = next
			m.history = append(m.history, next)
			return nil
		}
	}
	return errors.InternalError("illegal pipeline transition").
		WithContext("from", string(from)).
		WithContext("to", string(next)).
		Build()
}
