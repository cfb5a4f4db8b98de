package layout

import "fmt"

// State is a step of the per-run state machine.
type State int

const (
	Idle State = iota
	Analyzing
	BackendExecuting
	PostProcessing
	Scoring
	Done
	Degraded
)

var stateNames = [...]string{
	Idle:             "idle",
	Analyzing:        "analyzing",
	BackendExecuting: "backend_executing",
	PostProcessing:   "post_processing",
	Scoring:          "scoring",
	Done:             "done",
	Degraded:         "degraded",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool { return s == Done || s == Degraded }

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, n := range stateNames {
		if n == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
