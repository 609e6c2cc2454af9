package router

type State int

const (
	Idle State = iota
	Listening
	Dispatching
	Responding
	Shutdown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Dispatching:
		return "dispatching"
	case Responding:
		return "responding"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
