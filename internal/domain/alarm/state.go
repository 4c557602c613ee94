package alarm

import "time"

// Actor is the operator behind an arm or disarm command.
type Actor struct {
	// Hostname is the console machine.
	Hostname string
	// Username is the console user.
	Username string
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}

// Clone returns a copy, nil for nil.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// State is the installation-wide intrusion switch.
type State struct {
	// Timestamp is when the switch was last set.
	Timestamp time.Time
	// LastActor is whoever last set the switch, nil when unknown.
	LastActor *Actor
	// IsArmed reports whether detected motion raises an alarm.
	IsArmed bool
}

// Initial is the switch of an installation that never received a command:
// armed, with no known actor.
func Initial(at time.Time) *State {
	return &State{
		Timestamp: at,
		IsArmed:   true,
	}
}

// Switch returns the state after actor sets the switch to armed at the given
// time, and whether the value flipped. Setting the current value again still
// refreshes the actor and the timestamp.
func (s *State) Switch(armed bool, actor *Actor, at time.Time) (*State, bool) {
	next := &State{
		Timestamp: at,
		LastActor: actor.Clone(),
		IsArmed:   armed,
	}

	return next, s == nil || s.IsArmed != armed
}

// Triggers reports whether a reading with the given motion flag raises an alarm.
func (s *State) Triggers(motionDetected bool) bool {
	return s != nil && s.IsArmed && motionDetected
}

// Clone returns a copy that shares nothing with s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	return &State{
		Timestamp: s.Timestamp,
		LastActor: s.LastActor.Clone(),
		IsArmed:   s.IsArmed,
	}
}
