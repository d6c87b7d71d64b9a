// SPDX-License-Identifier: MIT

package crossval

import "fmt"

// State is the lifecycle stage of one (fold, repetition) iteration.
type State int

// Iteration states, in lifecycle order.
const (
	Idle State = iota
	Training
	Testing
	Aggregating
	Done
	Failed
)

var stateNames = [...]string{
	Idle:        "idle",
	Training:    "training",
	Testing:     "testing",
	Aggregating: "aggregating",
	Done:        "done",
	Failed:      "failed",
}

// String returns the lower-case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// next lists the legal successors of every state.
var next = map[State][]State{
	Idle:        {Training},
	Training:    {Testing, Failed},
	Testing:     {Aggregating, Failed},
	Aggregating: {Done},
}

// CanTransition reports whether to may follow s.
func (s State) CanTransition(to State) bool {
	for _, n := range next[s] {
		if n == to {
			return true
		}
	}
	return false
}

// Transition is reported to Config.OnTransition on every state change.
type Transition struct {
	Fold, Rep int
	From, To  State
}

// iteration tracks the state of one (fold, rep) pass.
type iteration struct {
	fold, rep int
	state     State
	hook      func(Transition)
}

func (it *iteration) advance(to State) {
	if !it.state.CanTransition(to) {
		panic(fmt.Sprintf("crossval: illegal transition %s → %s", it.state, to))
	}
	if it.hook != nil {
		it.hook(Transition{Fold: it.fold, Rep: it.rep, From: it.state, To: to})
	}
	it.state = to
}

// fail moves to Failed and returns the located error.
func (it *iteration) fail(err error) error {
	stage := it.state
	it.advance(Failed)
	return &TrainingError{Fold: it.fold, Rep: it.rep, Stage: stage, Err: err}
}
