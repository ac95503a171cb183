package engine

import "fmt"

// Status is the outcome of one bounded search burst.
type Status int

const (
	// StatusSearching means the step budget ran out without a conclusive
	// answer; the caller should issue another burst.
	StatusSearching Status = iota
	// StatusFound means a complete result exists under the current bound.
	StatusFound
	// StatusExhausted means the search space at the current height and
	// bound is provably empty.
	StatusExhausted
	// StatusSuspended means the engine paused deliberately. The driver
	// never requests suspension, so observing it is a contract violation.
	StatusSuspended
)

var statusNames = map[Status]string{
	StatusSearching: "searching",
	StatusFound:     "found",
	StatusExhausted: "exhausted",
	StatusSuspended: "suspended",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus maps a status name back to its Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// MarshalText lets statuses appear by name in JSON, e.g. replay scripts.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
