package registration

// State is a step of the registration flow.
type State int

const (
	StateIdle State = iota
	StateCheckingDuplicate
	StateDuplicateWarning
	StateWriting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingDuplicate:
		return "checking_duplicate"
	case StateDuplicateWarning:
		return "duplicate_warning"
	case StateWriting:
		return "writing"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one submission.
type Outcome int

const (
	// OutcomeIgnored means the code was blank and nothing happened
	OutcomeIgnored Outcome = iota
	// OutcomeDuplicate means the code was already registered and nothing was written
	OutcomeDuplicate
	// OutcomeRegistered means a new record was stored
	OutcomeRegistered
	// OutcomeFailed means a store operation failed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRegistered:
		return "registered"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
