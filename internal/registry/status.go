package registry

import "strings"

// Status is the advisory state of a managed process.
type Status uint8

const (
	// StatusUnknown covers values this version does not recognise.
	StatusUnknown Status = iota
	StatusRunning
	StatusIdle
	StatusDead
)

// ParseStatus maps a stored value to a Status, never failing.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return StatusRunning
	case "idle":
		return StatusIdle
	case "dead":
		return StatusDead
	}
	return StatusUnknown
}

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusIdle:
		return "idle"
	case StatusDead:
		return "dead"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}
