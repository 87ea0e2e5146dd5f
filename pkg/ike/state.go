package ike

type State int

const (
	Idle State = iota
	Phase1Init
	Phase1Auth
	Phase2
	Established
	Error
)

var stateNames = map[State]string{
	Idle:        "Idle",
	Phase1Init:  "Phase1Init",
	Phase1Auth:  "Phase1Auth",
	Phase2:      "Phase2",
	Established: "Established",
	Error:       "Error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Final reports whether no transition leaves s.
func (s State) Final() bool {
	return s == Established || s == Error
}

// transition moves a session out of one state. It returns the next state,
// or a typed error that sends the session to Error.
type transition func(s *Session) (State, error)

var transitions = map[State]transition{
	Idle:       (*Session).saInit,
	Phase1Init: (*Session).auth,
	Phase1Auth: (*Session).createChild,
	Phase2:     (*Session).establish,
}

const (
	IKESAInit     = "IKE_SA_INIT"
	IKEAuth       = "IKE_AUTH"
	CreateChildSA = "CREATE_CHILD_SA"
	Informational = "INFORMATIONAL"
)
