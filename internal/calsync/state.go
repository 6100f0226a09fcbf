package calsync

// State is the engine's session lifecycle. Idle until configuration has
// loaded at least once, Loading until the first successful fetch, Ready
// from then on.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

type tickEvent int

const (
	eventConfigLoaded tickEvent = iota
	eventFetchSucceeded
	eventFetchFailed
)

// transition is the engine's whole state machine. Pure so it can be
// checked without wiring a timer.
func transition(state State, event tickEvent) State {
	switch state {
	case StateIdle:
		if event == eventConfigLoaded {
			return StateLoading
		}
		return StateIdle
	case StateLoading:
		if event == eventFetchSucceeded {
			return StateReady
		}
		return StateLoading
	default:
		return StateReady
	}
}
