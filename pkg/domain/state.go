package domain

// SessionState is the lifecycle state of one review session. Applied and
// discarded are terminal.
type SessionState string

const (
	StateNone        SessionState = "none"
	StateExtracting  SessionState = "extracting"
	StateExtracted   SessionState = "extracted"
	StateTranslating SessionState = "translating"
	StateTranslated  SessionState = "translated"
	StateApplied     SessionState = "applied"
	StateDiscarded   SessionState = "discarded"
)

// sessionTransitions enumerates the legal state transitions:
// none -> extracting -> extracted -> (translating -> translated)* -> applied | discarded.
var sessionTransitions = map[SessionState][]SessionState{
	StateNone:        {StateExtracting, StateDiscarded},
	StateExtracting:  {StateExtracted, StateNone},
	StateExtracted:   {StateTranslating, StateApplied, StateDiscarded, StateExtracting},
	StateTranslating: {StateTranslated, StateExtracted},
	StateTranslated:  {StateTranslating, StateApplied, StateDiscarded, StateExtracting},
	StateApplied:     {},
	StateDiscarded:   {},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s SessionState) CanTransition(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s SessionState) Terminal() bool {
	return len(sessionTransitions[s]) == 0
}
