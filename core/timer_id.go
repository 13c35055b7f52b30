package core

import "strconv"

// TimerID selects one of the physical interval timers on the board
type TimerID uint8

// Interval timers present on the board
const (
	Timer0 TimerID = iota
	Timer1
	Timer2
)

// NumTimers is the number of physical interval timers.
// Adding a timer means extending this constant and the board's base table.
const NumTimers = 3

// AllTimers lists every timer in initialization order
var AllTimers = [NumTimers]TimerID{Timer0, Timer1, Timer2}

// Valid reports whether id names a physical timer
func (id TimerID) Valid() bool {
	return int(id) < NumTimers
}

func (id TimerID) String() string {
	if !id.Valid() {
		return "timer(" + itoa(int(id)) + ")"
	}
	return "timer" + itoa(int(id))
}

// ParseTimerID accepts "0", "t0" or "timer0" style names
func ParseTimerID(s string) (TimerID, error) {
	num := s
	switch {
	case len(s) > 5 && s[:5] == "timer":
		num = s[5:]
	case len(s) > 1 && s[0] == 't':
		num = s[1:]
	}

	n, err := strconv.ParseUint(num, 10, 8)
	if err != nil {
		return 0, &ConfigurationError{Name: s}
	}
	id := TimerID(n)
	if !id.Valid() {
		return 0, &ConfigurationError{ID: id}
	}
	return id, nil
}
